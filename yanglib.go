package yangson

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/openconfig/goyang/pkg/yang"
)

// ModuleInfo is one RFC 7895 yang-library module-set entry: the facts a
// server reports about a module it implements or imports.
type ModuleInfo struct {
	Name       string
	Revision   string
	Namespace  string
	Features   []string
	Submodules []string
	Implement  bool
}

// YangLibrary is the assembled yang-library content for a schema tree:
// the module set plus its RFC 7895 content-hash identifier, which
// changes whenever the implemented module set, revisions or supported
// features change.
type YangLibrary struct {
	ModuleSetID string
	Modules     []ModuleInfo
}

// BuildYangLibrary assembles the yang-library view of root's underlying
// module set, restricted to the features the server actually supports.
func BuildYangLibrary(root *SchemaNode, supportedFeatures map[string]bool) (*YangLibrary, error) {
	if root.rx == nil || root.rx.modules == nil {
		return nil, newErrorf(KindBadYangLibrary, "schema tree carries no module set")
	}
	var mods []*yang.Module
	for _, m := range root.rx.modules.Modules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool {
		if mods[i].Name != mods[j].Name {
			return mods[i].Name < mods[j].Name
		}
		return mods[i].Current() < mods[j].Current()
	})

	lib := &YangLibrary{}
	var content strings.Builder
	for _, m := range mods {
		if m.BelongsTo != nil {
			continue // submodules are reported under their parent, not standalone
		}
		info := ModuleInfo{Name: m.Name, Revision: m.Current(), Implement: true}
		if m.Namespace != nil {
			info.Namespace = m.Namespace.Name
		}
		for _, f := range m.Feature {
			if supportedFeatures[f.Name] {
				info.Features = append(info.Features, f.Name)
			}
		}
		for _, inc := range m.Include {
			if inc.Module != nil {
				info.Submodules = append(info.Submodules, fmt.Sprintf("%s@%s", inc.Module.Name, inc.Module.Current()))
			}
		}
		lib.Modules = append(lib.Modules, info)

		fmt.Fprintf(&content, "%s@%s;%s;", info.Name, info.Revision, info.Namespace)
		for _, f := range info.Features {
			fmt.Fprintf(&content, "%s,", f)
		}
		content.WriteByte(';')
	}
	lib.ModuleSetID = contentHash(content.String())
	glog.V(1).Infof("yanglib: assembled %d modules, module-set-id=%s", len(lib.Modules), lib.ModuleSetID)
	return lib, nil
}

// ylibDoc mirrors the RFC 7895 (2016-06-21) "modules-state" shape: one
// flat module list, each entry carrying its own feature/conformance-type/
// submodule fields. This is the document §6 names as YANG-library input.
type ylibDoc struct {
	ModulesState struct {
		Module []ylibModule `json:"module"`
	} `json:"ietf-yang-library:modules-state"`
}

type ylibModule struct {
	Name             string          `json:"name"`
	Revision         string          `json:"revision"`
	Namespace        string          `json:"namespace"`
	ConformanceType  string          `json:"conformance-type"`
	Feature          []string        `json:"feature"`
	Submodule        []ylibSubmodule `json:"submodule"`
}

type ylibSubmodule struct {
	Name     string `json:"name"`
	Revision string `json:"revision"`
}

// ParseYangLibraryDocument decodes a RFC 7895 YANG-library JSON document,
// returning the implemented module names and the feature set the server
// supports (only features named against an "implement"-conformance
// module count; import-only modules contribute no features).
func ParseYangLibraryDocument(data []byte) (implemented []string, features map[string]bool, err error) {
	var doc ylibDoc
	if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
		return nil, nil, newErrorf(KindBadYangLibrary, "invalid yang-library JSON: %v", jsonErr)
	}
	if len(doc.ModulesState.Module) == 0 {
		return nil, nil, newErrorf(KindBadYangLibrary, "yang-library document lists no modules")
	}
	features = map[string]bool{}
	seenImplemented := map[string]bool{}
	for _, m := range doc.ModulesState.Module {
		if m.Name == "" {
			return nil, nil, newErrorf(KindBadYangLibrary, "yang-library module entry missing name")
		}
		if m.ConformanceType == "import" {
			continue
		}
		if seenImplemented[m.Name] {
			return nil, nil, newErrorf(KindMultipleImplementedRevisions, "module %q implemented more than once", m.Name)
		}
		seenImplemented[m.Name] = true
		implemented = append(implemented, m.Name)
		for _, f := range m.Feature {
			features[f] = true
		}
	}
	if len(implemented) == 0 {
		return nil, nil, newErrorf(KindBadYangLibrary, "yang-library document implements no module")
	}
	return implemented, features, nil
}

// Load drives the collaborator goyang names in §6's "module-source
// loader" role: it adds searchPath to goyang's include/import search,
// parses and link-resolves every module the YANG-library document
// implements, and builds the schema tree from the result. The feature
// set the document declared is returned alongside the tree since callers
// printing the module-set-id (-i) need it again for BuildYangLibrary.
func Load(ylibJSON []byte, searchPath []string) (*SchemaNode, map[string]bool, error) {
	implemented, features, err := ParseYangLibraryDocument(ylibJSON)
	if err != nil {
		return nil, nil, err
	}
	yang.AddPath(searchPath...)
	ms := yang.NewModules()
	for _, name := range implemented {
		if readErr := ms.Read(name); readErr != nil {
			return nil, nil, newErrorf(KindModuleNotFound, "module %s: %v", name, readErr)
		}
	}
	if errs := ms.Process(); len(errs) > 0 {
		return nil, nil, newErrorf(KindBadYangLibrary, "module processing failed: %v", errs[0])
	}
	schema, err := BuildSchema(ms, implemented, features)
	if err != nil {
		return nil, nil, err
	}
	return schema, features, nil
}

// contentHash reproduces RFC 7895's module-set-id recipe: an
// implementation-defined string that changes if and only if the
// reported module set changes, here a sha1/base64 digest of the
// deterministically ordered module-set content.
func contentHash(s string) string {
	h := sha1.Sum([]byte(s))
	return base64.StdEncoding.EncodeToString(h[:])
}

// Program yangson loads a YANG-library document and a module search
// path, then reports on the resulting schema tree or validates an
// instance document against it. See §6 of the design notes for the
// exit-code contract.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openconfig/goyang/pkg/indent"
	"github.com/pborman/getopt"

	"github.com/yangson-go/yangson"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		searchPath  string
		printID     bool
		printTree   bool
		printDigest bool
		instPath    string
		scopeName   = "all"
		ctName      = "config"
	)
	getopt.StringVarLong(&searchPath, "path", 'p', "colon separated module source search path", "PATH")
	getopt.BoolVarLong(&printID, "module-set-id", 'i', "print the module-set-id")
	getopt.BoolVarLong(&printTree, "tree", 't', "print the ASCII schema tree")
	getopt.BoolVarLong(&printDigest, "digest", 'd', "print the schema digest as JSON")
	getopt.StringVarLong(&instPath, "validate", 'v', "validate the given JSON instance file", "INST")
	getopt.StringVarLong(&scopeName, "scope", 's', "validation scope: syntax, semantics, all", "SCOPE")
	getopt.StringVarLong(&ctName, "content", 'c', "content type: config, nonconfig, all", "CONTENT")
	getopt.SetParameters("YLIB")
	if err := getopt.Getopt(func(getopt.Option) bool { return true }); err != nil {
		fmt.Fprintf(os.Stderr, "usage-error: %v\n", err)
		return 1
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage-error: exactly one YLIB argument required")
		return 1
	}

	actions := 0
	for _, on := range []bool{printID, printTree, printDigest, instPath != ""} {
		if on {
			actions++
		}
	}
	if actions != 1 {
		fmt.Fprintln(os.Stderr, "usage-error: exactly one of -i/-t/-d/-v is required")
		return 1
	}

	ylibData, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "io-error: %v\n", err)
		return 1
	}
	if !json.Valid(ylibData) {
		fmt.Fprintln(os.Stderr, "json-decoding-error: YLIB is not valid JSON")
		return 1
	}

	var dirs []string
	if searchPath != "" {
		dirs = strings.Split(searchPath, ":")
	}

	schema, features, err := yangson.Load(ylibData, dirs)
	if err != nil {
		printCoreError(err)
		return 2
	}

	switch {
	case printID:
		lib, err := yangson.BuildYangLibrary(schema, features)
		if err != nil {
			printCoreError(err)
			return 2
		}
		fmt.Println(lib.ModuleSetID)
		return 0
	case printTree:
		writeTree(os.Stdout, schema)
		return 0
	case printDigest:
		if err := writeDigest(os.Stdout, schema); err != nil {
			printCoreError(err)
			return 2
		}
		return 0
	default:
		return validateInstance(schema, instPath, scopeName, ctName)
	}
}

func validateInstance(schema *yangson.SchemaNode, instPath, scopeName, ctName string) int {
	scope, err := parseScope(scopeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage-error: %v\n", err)
		return 1
	}
	ct, err := parseContentType(ctName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage-error: %v\n", err)
		return 1
	}

	data, err := os.ReadFile(instPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "io-error: %v\n", err)
		return 1
	}
	if !json.Valid(data) {
		fmt.Fprintln(os.Stderr, "json-decoding-error: instance document is not valid JSON")
		return 1
	}

	v, err := yangson.UnmarshalJSON(schema, data)
	if err != nil {
		printCoreError(err)
		return 3
	}
	if err := yangson.Validate(schema, v, scope, ct); err != nil {
		printCoreError(err)
		return 3
	}
	return 0
}

func parseScope(s string) (yangson.ValidationScope, error) {
	switch s {
	case "syntax":
		return yangson.ScopeSyntax, nil
	case "semantics":
		return yangson.ScopeSemantics, nil
	case "all", "":
		return yangson.ScopeAll, nil
	default:
		return 0, fmt.Errorf("invalid -s value %q", s)
	}
}

func parseContentType(s string) (yangson.ContentType, error) {
	switch s {
	case "config":
		return yangson.ContentConfig, nil
	case "nonconfig":
		return yangson.ContentNonConfig, nil
	case "all", "":
		return yangson.ContentAll, nil
	default:
		return 0, fmt.Errorf("invalid -c value %q", s)
	}
}

func printCoreError(err error) {
	if e, ok := err.(*yangson.Error); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Kind, e.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// writeTree renders an indented ASCII schema tree in the style goyang's
// own "tree" formatter uses for *yang.Entry, adapted to SchemaNode.
func writeTree(w io.Writer, s *yangson.SchemaNode) {
	for _, c := range s.Children() {
		writeTreeNode(w, c)
	}
}

func writeTreeNode(w io.Writer, s *yangson.SchemaNode) {
	rw := "rw"
	if !s.Config() {
		rw = "ro"
	}
	name := s.Name()
	if s.Namespace() != "" {
		name = s.Namespace() + ":" + name
	}
	children := s.Children()
	switch {
	case len(children) == 0 && len(s.Keys()) == 0:
		fmt.Fprintf(w, "%s: %s\n", rw, name)
		return
	case len(s.Keys()) > 0:
		fmt.Fprintf(w, "%s: [%s]%s {\n", rw, strings.Join(s.Keys(), ","), name) //}
	default:
		fmt.Fprintf(w, "%s: %s {\n", rw, name) //}
	}
	sub := indent.NewWriter(w, "  ")
	for _, c := range children {
		writeTreeNode(sub, c)
	}
	fmt.Fprintln(w, "}")
}

// digestNode is the JSON shape -d emits: enough of each schema node's
// shape to drive a client's own rendering without re-walking *yang.Entry.
type digestNode struct {
	Name      string        `json:"name"`
	Namespace string        `json:"namespace,omitempty"`
	Kind      string        `json:"kind"`
	Config    bool          `json:"config"`
	Mandatory bool          `json:"mandatory,omitempty"`
	Keys      []string      `json:"keys,omitempty"`
	Children  []*digestNode `json:"children,omitempty"`
}

func writeDigest(w io.Writer, s *yangson.SchemaNode) error {
	root := &digestNode{Name: "", Kind: "root"}
	for _, c := range s.Children() {
		root.Children = append(root.Children, buildDigest(c))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

func buildDigest(s *yangson.SchemaNode) *digestNode {
	d := &digestNode{
		Name:      s.Name(),
		Namespace: s.Namespace(),
		Kind:      s.Kind().String(),
		Config:    s.Config(),
		Keys:      s.Keys(),
	}
	for _, c := range s.Children() {
		d.Children = append(d.Children, buildDigest(c))
	}
	return d
}

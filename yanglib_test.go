package yangson

import "testing"

const sampleYangLibraryDoc = `{
  "ietf-yang-library:modules-state": {
    "module-set-id": "ignored-by-parser",
    "module": [
      {
        "name": "example",
        "revision": "2024-01-01",
        "namespace": "urn:example",
        "conformance-type": "implement",
        "feature": ["extra"]
      },
      {
        "name": "ietf-inet-types",
        "revision": "2013-07-15",
        "namespace": "urn:ietf:params:xml:ns:yang:ietf-inet-types",
        "conformance-type": "import"
      }
    ]
  }
}`

func TestParseYangLibraryDocument(t *testing.T) {
	implemented, features, err := ParseYangLibraryDocument([]byte(sampleYangLibraryDoc))
	if err != nil {
		t.Fatalf("ParseYangLibraryDocument: %v", err)
	}
	if len(implemented) != 1 || implemented[0] != "example" {
		t.Fatalf("implemented = %v, want [example]", implemented)
	}
	if !features["extra"] {
		t.Fatalf("features = %v, want extra=true", features)
	}
}

func TestParseYangLibraryDocumentMalformed(t *testing.T) {
	_, _, err := ParseYangLibraryDocument([]byte(`{"not-yang-library": true}`))
	if err == nil {
		t.Fatal("expected an error for a document with no modules-state")
	}
}

func TestParseYangLibraryDocumentDuplicateImplemented(t *testing.T) {
	doc := `{
	  "ietf-yang-library:modules-state": {
	    "module": [
	      {"name": "dup", "revision": "2024-01-01", "conformance-type": "implement"},
	      {"name": "dup", "revision": "2024-06-01", "conformance-type": "implement"}
	    ]
	  }
	}`
	_, _, err := ParseYangLibraryDocument([]byte(doc))
	if err == nil {
		t.Fatal("expected an error for a module implemented more than once")
	}
	yerr, ok := err.(*Error)
	if !ok || yerr.Kind != KindMultipleImplementedRevisions {
		t.Fatalf("err = %v, want KindMultipleImplementedRevisions", err)
	}
}

func TestBuildYangLibraryDeterministicID(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", map[string]bool{"extra": true})
	lib1, err := BuildYangLibrary(root, map[string]bool{"extra": true})
	if err != nil {
		t.Fatalf("BuildYangLibrary: %v", err)
	}
	lib2, err := BuildYangLibrary(root, map[string]bool{"extra": true})
	if err != nil {
		t.Fatalf("BuildYangLibrary: %v", err)
	}
	if lib1.ModuleSetID != lib2.ModuleSetID {
		t.Fatalf("module-set-id not deterministic: %s vs %s", lib1.ModuleSetID, lib2.ModuleSetID)
	}
	if len(lib1.Modules) != 1 || lib1.Modules[0].Name != "example" {
		t.Fatalf("lib1.Modules = %#v, want one example entry", lib1.Modules)
	}

	lib3, err := BuildYangLibrary(root, nil)
	if err != nil {
		t.Fatalf("BuildYangLibrary: %v", err)
	}
	if lib3.ModuleSetID == lib1.ModuleSetID {
		t.Fatal("module-set-id should change when the supported feature set changes")
	}
}

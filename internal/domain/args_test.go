package domain

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestArgsPreserveInsertionOrder(t *testing.T) {
	args := NewArgs("zeta", 1, "alpha", 2, "mid", 3)
	keys := args.Keys()
	if len(keys) != 3 || keys[0] != "zeta" || keys[1] != "alpha" || keys[2] != "mid" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestArgsSetKeepsPositionOnOverwrite(t *testing.T) {
	args := NewArgs("name", "nginx", "state", "present")
	args.Set("name", "httpd")
	keys := args.Keys()
	if keys[0] != "name" || keys[1] != "state" {
		t.Fatalf("keys = %v", keys)
	}
	if v, _ := args.Get("name"); v != "httpd" {
		t.Fatalf("name = %v", v)
	}
}

func TestArgsMarshalJSONOrdered(t *testing.T) {
	args := NewArgs("name", "nginx", "state", "present", "update_cache", true)
	data, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"name":"nginx","state":"present","update_cache":true}`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}
}

func TestArgsMarshalJSONEmpty(t *testing.T) {
	var args *Args
	data, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != "{}" && string(data) != "null" {
		t.Fatalf("json = %s", data)
	}
}

func TestArgsMarshalYAMLOrdered(t *testing.T) {
	args := NewArgs("path", "/srv/app", "state", "directory")
	data, err := yaml.Marshal(args)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := "path: /srv/app\nstate: directory\n"
	if string(data) != want {
		t.Fatalf("yaml = %q, want %q", data, want)
	}
}

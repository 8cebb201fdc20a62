// Package fileapitest writes file-API replies the way a cmake configure
// pass does, for tests that cannot run cmake.
package fileapitest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/usecmake/x/cmake/fileapi"
)

// Configuration is one configuration of a fake code model.
type Configuration struct {
	Name    string
	Targets []fileapi.Target
}

// WriteReply answers, in buildDir, the codemodel query of every client
// whose query directory exists, like cmake does at the end of a configure
// pass. Clients without a query get no reply.
func WriteReply(buildDir string, configs ...Configuration) error {
	replyDir := fileapi.ReplyDir(buildDir)
	if err := os.RemoveAll(replyDir); err != nil {
		return err
	}
	if err := os.MkdirAll(replyDir, 0o755); err != nil {
		return err
	}

	model := fileapi.CodeModel{
		Kind:  "codemodel",
		Paths: fileapi.Paths{Build: filepath.ToSlash(buildDir)},
	}
	for _, c := range configs {
		conf := fileapi.Configuration{Name: c.Name}
		for i, t := range c.Targets {
			file := fmt.Sprintf("target-%s-%s-%d.json", t.Name, c.Name, i)
			if err := writeJSON(filepath.Join(replyDir, file), t); err != nil {
				return err
			}
			conf.Targets = append(conf.Targets, fileapi.TargetRef{Name: t.Name, ID: t.ID, JSONFile: file})
		}
		model.Configurations = append(model.Configurations, conf)
	}
	const modelFile = "codemodel-v2-0001.json"
	if err := writeJSON(filepath.Join(replyDir, modelFile), model); err != nil {
		return err
	}

	reply := make(map[string]any)
	queries, err := filepath.Glob(filepath.Join(fileapi.APIDir(buildDir), "query", "client-*", "codemodel-v2"))
	if err != nil {
		return err
	}
	for _, q := range queries {
		client := filepath.Base(filepath.Dir(q))
		reply[client] = map[string]any{
			"codemodel-v2": map[string]any{
				"kind":     "codemodel",
				"version":  map[string]int{"major": 2, "minor": 6},
				"jsonFile": modelFile,
			},
		}
	}
	index := map[string]any{
		"cmake":   map[string]any{"version": map[string]string{"string": "3.28.1"}},
		"objects": []any{},
		"reply":   reply,
	}
	return writeJSON(filepath.Join(replyDir, "index-2026-01-01T00-00-00-0000.json"), index)
}

// Library returns an installable library target.
func Library(name, typ string, artifacts ...string) fileapi.Target {
	t := fileapi.Target{
		ID:      name + "::@6890427a1f51a3e7e1df",
		Name:    name,
		Type:    typ,
		Install: &fileapi.Install{Prefix: fileapi.InstallPath{Path: "/usr/local"}},
	}
	for _, a := range artifacts {
		t.Artifacts = append(t.Artifacts, fileapi.Artifact{Path: a})
	}
	return t
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

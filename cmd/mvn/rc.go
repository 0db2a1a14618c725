// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// envSkipRC disables reading the rc files.
const envSkipRC = "MAVEN_SKIP_RC"

// rcFiles lists the rc files, lowest precedence first.
func rcFiles(home string) []string {
	files := []string{"/etc/mavenrc"}
	if home != "" {
		files = append(files, filepath.Join(home, ".mavenrc"))
	}
	return files
}

// withRC adds the KEY=value entries of files to environ. The process
// environment wins over every file and later files win over earlier ones.
// Unreadable or missing files are skipped.
func withRC(environ []string, files []string) []string {
	set := make(map[string]bool, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		set[k] = true
		if k == envSkipRC && v != "" {
			return environ
		}
	}

	merged := map[string]string{}
	var order []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		vars, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		for k, v := range vars {
			if set[k] {
				continue
			}
			if _, seen := merged[k]; !seen {
				order = append(order, k)
			}
			merged[k] = v
		}
	}

	out := append([]string(nil), environ...)
	for _, k := range order {
		out = append(out, k+"="+merged[k])
	}
	return out
}

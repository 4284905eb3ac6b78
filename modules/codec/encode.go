// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Encode writes s to path as a summary document: create-in-a-uniquely-
// named-temp-file-then-rename, so a reader never observes a partially
// written summary.
func Encode(path string, s *Summary) error {
	doc, err := marshalDocument(s)
	if err != nil {
		return err
	}
	return atomicEncode(path, doc)
}

func atomicEncode(path string, doc *fileDocument) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".hugetree-summary-%d.toml", time.Now().UnixNano()))
	name, err := func() (string, error) {
		fd, err := os.Create(tmp)
		if err != nil {
			return "", err
		}
		defer fd.Close() // nolint
		enc := toml.NewEncoder(fd)
		enc.Indent = ""
		if err := enc.Encode(doc); err != nil {
			return tmp, err
		}
		return tmp, nil
	}()
	if err != nil {
		if len(name) != 0 {
			_ = os.Remove(name)
		}
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

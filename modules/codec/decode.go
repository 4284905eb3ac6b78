// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/BurntSushi/toml"
)

// Decode reads and reconstructs a Summary from the document at path.
func Decode(path string) (*Summary, error) {
	var doc fileDocument
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, err
	}
	return unmarshalDocument(&doc)
}

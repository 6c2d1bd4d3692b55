// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"os"

	"gopkg.in/yaml.v2"
)

// RuntimeConfig is the per-process connection config a site daemon or repl
// client externalizes from the (hand-authored, in-source) system catalog:
// which site this process is, the shared secret, and where to find a
// catalog override. The system catalog itself stays a Go table (or a TOML
// override); this is only ever "which box am I and how do I dial out".
type RuntimeConfig struct {
	SiteID      int    `yaml:"site_id"`
	Secret      string `yaml:"secret"`
	CatalogPath string `yaml:"catalog_path"`
	ListenPort  int    `yaml:"listen_port"`
	LogLevel    string `yaml:"log_level"`
	LogDir      string `yaml:"log_dir"`
}

// LoadRuntimeConfig reads a RuntimeConfig from a YAML file. A missing file
// is not an error: every field has a sensible zero value, and callers
// typically overlay flag values on top of what LoadRuntimeConfig returns.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

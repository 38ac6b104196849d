// Package cliopts decodes the protoc plugin parameter string, registers the
// standalone CLI's flags, and loads the optional project config file.
package cliopts

import "strings"

// ParseParameter splits a comma-joined `key=value,key,...` plugin
// parameter string into a map, mirroring
// toba-ts-protobuf/generator.go's Generator.CommandLineParameters: a bare
// key with no `=` maps to the empty string.
func ParseParameter(parameter string) map[string]string {
	out := make(map[string]string)
	if parameter == "" {
		return out
	}
	for _, p := range strings.Split(parameter, ",") {
		if i := strings.Index(p, "="); i < 0 {
			out[p] = ""
		} else {
			out[p[:i]] = p[i+1:]
		}
	}
	return out
}

package options

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/toba/staticpb/internal/ident"
)

// Pattern is one parsed line of a side-file: a glob matched against a
// schema element's dot-joined qualified name, plus the settings that apply
// when it matches.
type Pattern struct {
	Glob    string
	Record  Record
	Matched bool
}

// SideFileTable holds every pattern loaded for a run, in file order. Glob
// matching happens in declaration order so later patterns win ties the same
// way the resolver's "last writer wins" rule intends.
type SideFileTable struct {
	patterns []*Pattern
}

// Add appends a freshly parsed pattern.
func (t *SideFileTable) Add(glob string, rec Record) {
	t.patterns = append(t.patterns, &Pattern{Glob: glob, Record: rec})
}

// Match returns the merged record from every pattern whose glob matches
// dotted, in table order, marking each matching pattern used.
func (t *SideFileTable) Match(dotted string) Record {
	var merged Record
	any := false
	for _, p := range t.patterns {
		ok, err := path.Match(p.Glob, dotted)
		if err != nil || !ok {
			continue
		}
		p.Matched = true
		if !any {
			merged = p.Record
			any = true
		} else {
			merged = Merge(merged, p.Record)
		}
	}
	return merged
}

// Unmatched returns every pattern that never matched any schema element
// across the whole run, for the "unused side-file pattern" warning.
func (t *SideFileTable) Unmatched() []string {
	var out []string
	for _, p := range t.patterns {
		if !p.Matched {
			out = append(out, p.Glob)
		}
	}
	return out
}

// LoadSideFile parses a ".options"-style side file: lines of
// "glob_pattern key=value,key=value", blank lines and "#"-prefixed comments
// ignored. Side files are read as UTF-8 text with no transcoding, per the
// resolution of the spec's open question on side-file encoding.
func LoadSideFile(t *SideFileTable, path_ string) error {
	f, err := os.Open(path_)
	if err != nil {
		return fmt.Errorf("%w: open side file %s: %v", ErrAnnotation, path_, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return fmt.Errorf("%w: %s:%d: expected 'pattern settings', got %q", ErrAnnotation, path_, lineNo, line)
		}

		glob := fields[0]
		rec, err := ParseSettings(strings.Join(fields[1:], " "))
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", ErrAnnotation, path_, lineNo, err)
		}
		t.Add(glob, rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading side file %s: %v", ErrAnnotation, path_, err)
	}
	return nil
}

// ParseSettings parses a comma-joined "key=value,key=value" settings string
// -- the same shape the CLI's repeatable -settings flag and a side-file
// line's tail both use -- into a Record.
func ParseSettings(s string) (Record, error) {
	var rec Record
	s = strings.TrimSpace(s)
	if s == "" {
		return rec, nil
	}

	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		eq := strings.IndexAny(kv, "=:")
		if eq < 0 {
			return rec, fmt.Errorf("unparseable setting %q", kv)
		}
		key := strings.TrimSpace(kv[:eq])
		val := strings.TrimSpace(kv[eq+1:])
		if err := applySetting(&rec, key, val); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func applySetting(rec *Record, key, val string) error {
	switch key {
	case "type":
		t, err := parseAllocType(val)
		if err != nil {
			return err
		}
		rec.Type = &t
	case "max_size":
		n, err := parseUint32(key, val)
		if err != nil {
			return err
		}
		rec.MaxSize = &n
	case "max_length":
		n, err := parseUint32(key, val)
		if err != nil {
			return err
		}
		rec.MaxLength = &n
	case "max_count":
		n, err := parseUint32(key, val)
		if err != nil {
			return err
		}
		rec.MaxCount = &n
	case "fixed_count":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.FixedCount = &b
	case "fixed_length":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.FixedLength = &b
	case "int_size":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("int_size: %w", err)
		}
		rec.IntSize = &n
	case "long_names":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.LongNames = &b
	case "packed_enum":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.PackedEnum = &b
	case "packed_struct":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.PackedStruct = &b
	case "enum_to_string":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.EnumToString = &b
	case "msgid":
		n, err := strconv.ParseInt(val, 10, 32)
		if err != nil {
			return fmt.Errorf("msgid: %w", err)
		}
		v := int32(n)
		rec.MsgID = &v
	case "no_unions":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.NoUnions = &b
	case "anonymous_oneof":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.AnonymousOneof = &b
	case "proto3":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.Proto3 = &b
	case "mangle_names":
		m, err := parseMangling(val)
		if err != nil {
			return err
		}
		rec.MangleNames = &m
	case "skip_message":
		b, err := parseBool(key, val)
		if err != nil {
			return err
		}
		rec.SkipMessage = &b
	case "callback_datatype":
		rec.CallbackDatatype = &val
	case "callback_function":
		rec.CallbackFunction = &val
	case "descriptorsize":
		w, err := parseDescriptorWidth(val)
		if err != nil {
			return err
		}
		rec.DescriptorSize = &w
	default:
		return fmt.Errorf("unknown annotation %q", key)
	}
	return nil
}

func parseUint32(key, val string) (uint32, error) {
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return uint32(n), nil
}

func parseBool(key, val string) (bool, error) {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func parseAllocType(val string) (AllocType, error) {
	switch strings.ToUpper(val) {
	case "DEFAULT", "FT_DEFAULT":
		return Default, nil
	case "STATIC", "FT_STATIC":
		return Static, nil
	case "POINTER", "FT_POINTER":
		return Pointer, nil
	case "CALLBACK", "FT_CALLBACK":
		return Callback, nil
	case "IGNORE", "FT_IGNORE":
		return Ignore, nil
	case "INLINE", "FT_INLINE":
		return Inline, nil
	default:
		return Default, fmt.Errorf("unknown type %q", val)
	}
}

func parseMangling(val string) (ident.Mangling, error) {
	switch strings.ToUpper(val) {
	case "NONE", "M_NONE":
		return ident.None, nil
	case "STRIP_PACKAGE", "M_STRIP_PACKAGE":
		return ident.StripPackage, nil
	case "FLATTEN", "M_FLATTEN":
		return ident.Flatten, nil
	case "PACKAGE_INITIALS", "M_PACKAGE_INITIALS":
		return ident.PackageInitials, nil
	default:
		return ident.None, fmt.Errorf("unknown mangle_names %q", val)
	}
}

func parseDescriptorWidth(val string) (DescriptorWidth, error) {
	switch strings.ToUpper(val) {
	case "AUTO", "DS_AUTO":
		return Auto, nil
	case "1":
		return Width1, nil
	case "2":
		return Width2, nil
	case "4":
		return Width4, nil
	case "8":
		return Width8, nil
	default:
		return Auto, fmt.Errorf("unknown descriptorsize %q", val)
	}
}

package env

import (
	"encoding"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TagValue   = "env"
	TagDefault = "env-default"
)

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(name string) (string, bool)

type parseFunc func(*reflect.Value, string) error

var parsers = map[reflect.Type]parseFunc{
	reflect.TypeOf(time.Duration(0)): func(fieldValue *reflect.Value, env string) error {
		d, err := time.ParseDuration(env)
		if err != nil {
			return err
		}
		fieldValue.SetInt(int64(d))
		return nil
	},

	reflect.TypeOf([]string(nil)): func(fieldValue *reflect.Value, env string) error {
		var items []string
		for _, item := range strings.Split(env, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		fieldValue.Set(reflect.ValueOf(items))
		return nil
	},
}

// Load reads dotenv files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func Load(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("can't load env file %s, err: %w", file, err)
		}
	}
	return nil
}

// Read fills the tagged fields of root from the process environment.
func Read(root interface{}) error {
	return ReadWith(root, os.LookupEnv)
}

// ReadWith fills the tagged fields of root using lookup. A variable that is
// set always wins; env-default only fills fields that are still zero, so
// values decoded from a config file beforehand survive.
func ReadWith(root interface{}, lookup LookupFunc) error {
	rootValue := reflect.ValueOf(root)

	if rootValue.Kind() == reflect.Ptr {
		rootValue = rootValue.Elem()
	}

	if rootValue.Kind() != reflect.Struct {
		return fmt.Errorf("unexpected type %v", rootValue.Kind())
	}

	rootType := rootValue.Type()
	for i := 0; i < rootValue.NumField(); i++ {
		fieldType := rootType.Field(i)
		fieldValue := rootValue.Field(i)

		if fieldValue.Kind() == reflect.Ptr {
			if fieldValue.IsNil() {
				fieldValue.Set(reflect.New(fieldType.Type.Elem()))
			}

			fieldValue = fieldValue.Elem()
		}

		if fieldValue.Kind() == reflect.Struct && !hasParser(fieldValue) {
			if !fieldValue.CanInterface() {
				continue
			}

			err := ReadWith(fieldValue.Addr().Interface(), lookup)
			if err != nil {
				return err
			}
			continue
		}

		if !fieldValue.CanSet() {
			continue
		}

		tagValue, hasTagValue := fieldType.Tag.Lookup(TagValue)
		if !hasTagValue {
			continue
		}

		name, options := parseTag(tagValue)
		isRequired := options.Contains("required")
		defValue, hasDefValue := fieldType.Tag.Lookup(TagDefault)

		env, found := lookup(name)
		if !found {
			if !fieldValue.IsZero() {
				continue
			}
			if isRequired {
				return fmt.Errorf("environment variable %s is required but the value is not provided", name)
			}
			if !hasDefValue {
				continue
			}
			env = defValue
		}

		err := parseValue(fieldValue, name, env)
		if err != nil {
			return err
		}
	}

	return nil
}

func hasParser(fieldValue reflect.Value) bool {
	if _, ok := parsers[fieldValue.Type()]; ok {
		return true
	}
	if !fieldValue.CanAddr() {
		return false
	}
	_, ok := fieldValue.Addr().Interface().(encoding.TextUnmarshaler)
	return ok
}

func parseValue(fieldValue reflect.Value, name, env string) error {
	fieldType := fieldValue.Type()

	if parser, ok := parsers[fieldType]; ok {
		if err := parser(&fieldValue, env); err != nil {
			return fmt.Errorf("can't parse environment variable %v, err: %w", name, err)
		}
		return nil
	}

	if fieldValue.CanAddr() {
		if u, ok := fieldValue.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(env)); err != nil {
				return fmt.Errorf("can't parse environment variable %v, err: %w", name, err)
			}
			return nil
		}
	}

	switch fieldValue.Kind() {
	case reflect.String:
		fieldValue.SetString(env)

	case reflect.Bool:
		b, err := strconv.ParseBool(env)
		if err != nil {
			return fmt.Errorf("can't parse environment variable %v", name)
		}
		fieldValue.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		number, err := strconv.ParseInt(env, 0, fieldType.Bits())
		if err != nil {
			return fmt.Errorf("can't parse environment variable %v", name)
		}
		fieldValue.SetInt(number)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		number, err := strconv.ParseUint(env, 0, fieldType.Bits())
		if err != nil {
			return fmt.Errorf("can't parse environment variable %v", name)
		}
		fieldValue.SetUint(number)

	case reflect.Float32, reflect.Float64:
		number, err := strconv.ParseFloat(env, fieldType.Bits())
		if err != nil {
			return fmt.Errorf("can't parse environment variable %v", name)
		}
		fieldValue.SetFloat(number)

	default:
		return fmt.Errorf("unsupported type %s", fieldValue.Kind())
	}

	return nil
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	tag, opt, _ := strings.Cut(tag, ",")
	return tag, tagOptions(opt)
}

func (o tagOptions) Contains(optionName string) bool {
	if len(o) == 0 {
		return false
	}
	s := string(o)
	for s != "" {
		var name string
		name, s, _ = strings.Cut(s, ",")
		if name == optionName {
			return true
		}
	}
	return false
}

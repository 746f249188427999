package util

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
)

// LoadConfig fills the fields of the struct pointed to by c from the environment.
// The variable of a field is prefix followed by the field name. Strings are taken
// as is, other types are decoded as JSON. Fields without variable keep their value
// unless they are zero, which is an error.
func LoadConfig(prefix string, c any) error {
	rt, rc := reflect.TypeOf(c).Elem(), reflect.ValueOf(c).Elem()
	for i := 0; i < rt.NumField(); i++ {
		rft := rt.Field(i)
		if !rft.IsExported() {
			continue
		}
		key := prefix + rft.Name
		s, ok := os.LookupEnv(key)
		if !ok && !rc.Field(i).IsZero() {
			continue
		} else if !ok {
			return fmt.Errorf("failed to lookup %q in env", key)
		}
		if rft.Type.Kind() == reflect.String {
			rc.Field(i).SetString(s)
		} else if err := json.Unmarshal([]byte(s), rc.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("failed to unmarshal %q(%s) from %q: %w", key, rft.Type, s, err)
		}
	}
	return nil
}

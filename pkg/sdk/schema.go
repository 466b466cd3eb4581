package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const profileSchemaJSON = `{
  "type": "object",
  "required": ["cif", "name", "memberTier"],
  "properties": {
    "cif": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "email": {"type": "string"},
    "phone": {"type": "string"},
    "memberTier": {"enum": ["Gold", "Platinum", "Diamond"]},
    "status": {"type": "string"},
    "tierProgress": {
      "type": "object",
      "required": ["current", "target"],
      "properties": {
        "current": {"type": "integer", "minimum": 0},
        "target": {"type": "integer", "minimum": 0},
        "nextTier": {"type": "string"}
      }
    }
  }
}`

const loginSchemaJSON = `{
  "type": "object",
  "required": ["token", "profile"],
  "properties": {
    "token": {"type": "string", "minLength": 1},
    "profile": {"$ref": "profile.json"}
  }
}`

var (
	schemasOnce   sync.Once
	profileSchema *jsonschema.Schema
	loginSchema   *jsonschema.Schema
	schemasErr    error
)

// compileSchemas compiles the payload schemas once per process.
func compileSchemas() error {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.DefaultDraft(jsonschema.Draft7)

		for name, src := range map[string]string{
			"profile.json": profileSchemaJSON,
			"login.json":   loginSchemaJSON,
		} {
			doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
			if err != nil {
				schemasErr = fmt.Errorf("parse %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				schemasErr = fmt.Errorf("add %s: %w", name, err)
				return
			}
		}

		if profileSchema, schemasErr = compiler.Compile("profile.json"); schemasErr != nil {
			return
		}
		loginSchema, schemasErr = compiler.Compile("login.json")
	})
	return schemasErr
}

// decodeValidated checks raw against schema and decodes it into out.
// Any mismatch is reported as ErrDataUnavailable.
func decodeValidated(schema func() *jsonschema.Schema, raw json.RawMessage, out any) error {
	if err := compileSchemas(); err != nil {
		return fmt.Errorf("compile payload schemas: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrDataUnavailable, err)
	}
	if err := schema().Validate(inst); err != nil {
		return fmt.Errorf("%w: payload rejected: %v", ErrDataUnavailable, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrDataUnavailable, err)
	}
	return nil
}

func decodeProfile(raw json.RawMessage) (MemberProfile, error) {
	var profile MemberProfile
	if err := decodeValidated(func() *jsonschema.Schema { return profileSchema }, raw, &profile); err != nil {
		return MemberProfile{}, err
	}
	if err := profile.Validate(); err != nil {
		return MemberProfile{}, err
	}
	return profile, nil
}

func decodeLogin(raw json.RawMessage) (LoginResult, error) {
	var result LoginResult
	if err := decodeValidated(func() *jsonschema.Schema { return loginSchema }, raw, &result); err != nil {
		return LoginResult{}, err
	}
	if err := result.Profile.Validate(); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

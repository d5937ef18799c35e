package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateVars are the substitution values available to payload templates.
// Conventional keys: issuer_id, class_id, object_id, user_id, issuer_name.
type TemplateVars map[string]string

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_\.]+)\s*\}\}`)

// RenderTemplate resolves {{key}} placeholders from vars. Unknown keys render
// as the empty string.
func RenderTemplate(tmpl string, vars TemplateVars) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		g := placeholderRe.FindStringSubmatch(m)
		if len(g) != 2 {
			return ""
		}
		return vars[g[1]]
	})
}

// LoadTemplate reads a payload template file, resolves placeholders and
// returns the payload as JSON. YAML templates (.yaml/.yml) are converted;
// anything else must already be valid JSON.
func LoadTemplate(path string, vars TemplateVars) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload template %s: %w", path, err)
	}
	rendered := RenderTemplate(string(raw), vars)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal([]byte(rendered), &doc); err != nil {
			return nil, fmt.Errorf("parse payload template %s: %w", path, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert payload template %s to JSON: %w", path, err)
		}
		return out, nil
	default:
		if !json.Valid([]byte(rendered)) {
			return nil, fmt.Errorf("payload template %s did not render to valid JSON", path)
		}
		return []byte(rendered), nil
	}
}

// Built-in demo payloads, one pair per object type. Kept deliberately small;
// real integrations supply their own template files.
var defaultPayloads = map[ObjectType]struct{ class, object string }{
	Generic: {
		class:  `{"id":"{{class_id}}"}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE","cardTitle":{"defaultValue":{"language":"en-US","value":"Demo pass"}},"header":{"defaultValue":{"language":"en-US","value":"{{user_id}}"}}}`,
	},
	GiftCard: {
		class:  `{"id":"{{class_id}}","issuerName":"{{issuer_name}}","reviewStatus":"UNDER_REVIEW"}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE","cardNumber":"123abc"}`,
	},
	Loyalty: {
		class:  `{"id":"{{class_id}}","issuerName":"{{issuer_name}}","programName":"Demo program","reviewStatus":"UNDER_REVIEW"}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE","accountId":"{{user_id}}","accountName":"{{user_id}}"}`,
	},
	Offer: {
		class:  `{"id":"{{class_id}}","issuerName":"{{issuer_name}}","provider":"{{issuer_name}}","title":"Demo offer","redemptionChannel":"ONLINE","reviewStatus":"UNDER_REVIEW"}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE"}`,
	},
	EventTicket: {
		class:  `{"id":"{{class_id}}","issuerName":"{{issuer_name}}","eventName":{"defaultValue":{"language":"en-US","value":"Demo event"}},"reviewStatus":"UNDER_REVIEW"}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE"}`,
	},
	Flight: {
		class:  `{"id":"{{class_id}}","issuerName":"{{issuer_name}}","reviewStatus":"UNDER_REVIEW","localScheduledDepartureDateTime":"2027-07-01T10:00:00","flightHeader":{"carrier":{"carrierIataCode":"LX"},"flightNumber":"123"},"origin":{"airportIataCode":"ZRH"},"destination":{"airportIataCode":"LHR"}}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE","passengerName":"{{user_id}}","reservationInfo":{"confirmationCode":"42"}}`,
	},
	Transit: {
		class:  `{"id":"{{class_id}}","issuerName":"{{issuer_name}}","reviewStatus":"UNDER_REVIEW","transitType":"BUS"}`,
		object: `{"id":"{{object_id}}","classId":"{{class_id}}","state":"ACTIVE","tripType":"ONE_WAY"}`,
	},
}

// ClassPayload resolves the class payload: templatePath when given, otherwise
// the built-in demo payload for typ.
func ClassPayload(typ ObjectType, templatePath string, vars TemplateVars) ([]byte, error) {
	if templatePath != "" {
		return LoadTemplate(templatePath, vars)
	}
	return []byte(RenderTemplate(defaultPayloads[typ].class, vars)), nil
}

// ObjectPayload resolves the object payload analogously to ClassPayload.
func ObjectPayload(typ ObjectType, templatePath string, vars TemplateVars) ([]byte, error) {
	if templatePath != "" {
		return LoadTemplate(templatePath, vars)
	}
	return []byte(RenderTemplate(defaultPayloads[typ].object, vars)), nil
}

package hclcfg

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// LoadFile parses an HCL configuration file and returns its contents as a
// nested map keyed by attribute and block names.
func LoadFile(path string) (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parsing %s: unexpected body type %T", path, file.Body)
	}
	return decodeBody(body)
}

// decodeBody converts an HCL body into a nested map. Attribute expressions
// are evaluated with a nil context; references and functions are not part of
// the configuration surface.
func decodeBody(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating attribute %q: %w", name, diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = goVal
	}

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("block %q: labels are not supported in configuration files", block.Type)
		}
		inner, err := decodeBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}
		if existing, ok := out[block.Type].(map[string]any); ok {
			for k, v := range inner {
				existing[k] = v
			}
			continue
		}
		out[block.Type] = inner
	}

	return out, nil
}

package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// loadHCL parses an HCL overlay file and flattens it into dotted keys.
// Blocks nest: a `heartbeat { addr = ":9090" }` block yields the key
// "heartbeat.addr". Block labels extend the prefix the same way.
func loadHCL(path string) (map[string]cty.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, hclParseError(path, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &ParseError{Source: path, Detail: "unexpected HCL body type"}
	}

	out := make(map[string]cty.Value)
	if err := flattenHCLBody(path, body, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenHCLBody walks attributes and nested blocks, accumulating dotted
// keys into out. Attribute expressions are evaluated with a nil context,
// so overlays are literal values only.
func flattenHCLBody(path string, body *hclsyntax.Body, prefix string, out map[string]cty.Value) error {
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return hclParseError(path, diags)
		}
		out[joinKey(prefix, name)] = val
	}
	for _, block := range body.Blocks {
		key := block.Type
		for _, label := range block.Labels {
			key = joinKey(key, label)
		}
		if err := flattenHCLBody(path, block.Body, joinKey(prefix, key), out); err != nil {
			return err
		}
	}
	return nil
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// hclParseError converts HCL diagnostics into a ParseError carrying the
// first diagnostic's subject range.
func hclParseError(path string, diags hcl.Diagnostics) error {
	detail := diags.Error()
	if len(diags) > 0 && diags[0].Subject != nil {
		detail = fmt.Sprintf("%s: %s", diags[0].Subject, diags[0].Summary)
	}
	return &ParseError{Source: path, Detail: detail, Err: diags}
}

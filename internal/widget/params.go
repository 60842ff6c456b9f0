package widget

import (
	"encoding/json"

	"github.com/zhouzirui/mindcare/pkg/utils"
)

// FormatParameters renders the parameter object as the JSON text of its
// value, indented by two spaces. Key order is kept and \uXXXX escapes come
// out as the characters they encode. Numbers use their shortest form, so 1.0
// prints as 1.
func FormatParameters(raw json.RawMessage) (string, error) {
	value, err := utils.DecodeOrdered(raw)
	if err != nil {
		return "", err
	}
	out, err := utils.EncodeJSON(utils.NormalizeNumbers(value), "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func validFormat(format string) bool {
	return format == formatYAML || format == formatJSON
}

// writeResult は結果を指定形式で書き出す
func writeResult(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("JSONへの変換に失敗: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("YAMLへの変換に失敗: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("未対応の出力形式: %s", format)
	}
}

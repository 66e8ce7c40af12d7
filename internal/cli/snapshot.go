package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// readSnapshot decodes a YAML or JSON file into out. Unknown fields are
// rejected so a misspelt key does not silently fall back to zero. A path
// of "-" reads stdin.
func readSnapshot(cmd *cobra.Command, path string, out any) error {
	if path == "" {
		return fmt.Errorf("a snapshot file is required (-f)")
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return fmt.Errorf("snapshot %s is empty", path)
		}
		return fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return nil
}

// writeResult prints v in the selected format. YAML output goes through the
// JSON encoding first so both formats share the same field names.
func (o *options) writeResult(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	w := cmd.OutOrStdout()
	if o.output == outputJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("convert result: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = w.Write(out)
	return err
}

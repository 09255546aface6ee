package kv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dododb/dodo/lib/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key. The value must be valid JSON (e.g. '\"text\"', 42, '{\"a\":1}')",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Set(args[0], json.RawMessage(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := rpcStore.Get(args[0])
			if store.IsNotFound(err) {
				fmt.Printf("key=%s, found=false\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=true, value=%s\n", args[0], value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := rpcStore.Exists(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", args[0], found)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := rpcStore.List()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
	allCmd = &cobra.Command{
		Use:   "all",
		Short: "Prints all key value pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := rpcStore.GetAll()
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			return writeValues(os.Stdout, values, output)
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Prints the number of keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcStore.Count()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if force, _ := cmd.Flags().GetBool("force"); !force {
				return fmt.Errorf("clear removes every key, use --force to confirm")
			}
			if err := rpcStore.Clear(); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
)

func init() {
	allCmd.Flags().StringP("output", "o", "json", "Output format (json, yaml)")
	clearCmd.Flags().Bool("force", false, "Confirm that all keys should be removed")
}

// writeValues prints values as indented JSON or as YAML
func writeValues(w io.Writer, values map[string]json.RawMessage, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	case "yaml":
		// decode the raw values so they are rendered as yaml structures
		decoded := make(map[string]interface{}, len(values))
		for k, v := range values {
			var value interface{}
			if err := json.Unmarshal(v, &value); err != nil {
				return fmt.Errorf("value of key %s: %w", k, err)
			}
			decoded[k] = value
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(decoded)
	default:
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}
}

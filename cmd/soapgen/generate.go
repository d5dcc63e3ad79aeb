package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/soapgen"
)

func newGenerateCmd() *cobra.Command {
	genCmd := &cobra.Command{
		Use:   "generate <wsdl-file>",
		Short: "Generate a SoapUI project from a WSDL file",
		Args:  cobra.ExactArgs(1),
		RunE:  generateE,
	}

	addLoggingFlags(genCmd.Flags())
	addConfigFlags(genCmd.Flags())
	genCmd.Flags().StringSliceP("categories", "c", []string{"happy_path"}, "Test categories to generate (e.g. happy_path,edge_cases,security)")
	genCmd.Flags().StringP("output", "o", "", "Write project XML to file (default stdout)")

	return genCmd
}

func generateE(cmd *cobra.Command, args []string) error {
	logger := loggerFromCmd(cmd)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		logger.Fatal("config", "err", err)
		return nil
	}
	categories, _ := cmd.Flags().GetStringSlice("categories")
	output, _ := cmd.Flags().GetString("output")

	wsdlPath := args[0]
	data, err := os.ReadFile(wsdlPath)
	if err != nil {
		logger.Fatal("read wsdl", "path", wsdlPath, "err", err)
		return nil
	}

	var clean []string
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		logger.Fatal("at least one category is required")
		return nil
	}

	p, err := soapgen.New(cmd.Context(), soapgen.WithConfig(cfg), soapgen.WithLogger(logger))
	if err != nil {
		logger.Fatal("init", "err", err)
		return nil
	}
	defer p.Close()

	res := p.Generate(cmd.Context(), soapgen.Request{
		WSDL:       string(data),
		FileName:   filepath.Base(wsdlPath),
		Categories: clean,
	})
	if res.Failed() {
		logger.Fatal("generate", "id", res.GenerationID, "err", res.Err)
		return nil
	}

	if output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Project)
		return err
	}
	if err := os.WriteFile(output, []byte(res.Project), 0o644); err != nil {
		logger.Fatal("write output", "path", output, "err", err)
		return nil
	}
	logger.Info("project written", "id", res.GenerationID, "path", output, "bytes", len(res.Project))
	return nil
}

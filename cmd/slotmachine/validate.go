package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Language-Creation-Society/slotmachine/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the descriptor parses and its derived indexes build cleanly, without solving",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&descriptorPath, "in", "", "path to the descriptor JSON file (required)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptorFile(descriptorPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := loader.Load(d, cfg.Solver.SpacingSlots)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d talks, %d venues, %d people, %d available slots\n",
		len(res.Talks), len(res.Venues), len(res.People), len(res.SlotsAvailable))
	return nil
}

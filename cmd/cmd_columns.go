// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/communecheck/utils/textutils"
	"github.com/spf13/cobra"
)

const previewRows = 5

var columnsOpts = struct {
	Separator string
	Charset   string
}{}

var columnsCmd = &cobra.Command{
	Use:   "columns <file.csv>",
	Short: "Liste les colonnes détectées et un aperçu du fichier",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		tbl, err := loadTable(args[0], columnsOpts.Separator, columnsOpts.Charset)
		if err != nil {
			return err
		}

		fmt.Printf("Nombre de lignes : %s\n", textutils.FormatInt(int64(tbl.Len())))
		fmt.Printf("Nombre de colonnes : %d\n", len(tbl.Header))

		a, b := strings.Repeat("─", 3), strings.Repeat("─", 40)
		fmt.Printf("╭─%3s─┬─%-40s─╮\n", a, b)
		fmt.Printf("│ %3s │ %-40s │\n", "#", "Colonne")
		fmt.Printf("├─%3s─┼─%-40s─┤\n", a, b)

		for i, name := range tbl.Header {
			fmt.Printf("│ %3d │ %-40s │\n", i+1, textutils.Truncate(name, 40))
		}

		fmt.Printf("╰─%3s─┴─%-40s─╯\n", a, b)

		fmt.Println("Aperçu des premières lignes :")

		for i, row := range tbl.Rows {
			if i == previewRows {
				break
			}

			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = textutils.Truncate(cell, 30)
			}

			fmt.Printf("  %d: %s\n", i+1, strings.Join(cells, " | "))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().StringVar(&columnsOpts.Separator, "separator", ",", "Séparateur de colonnes: , ; tab |")
	columnsCmd.Flags().StringVar(&columnsOpts.Charset, "encoding", "", "Encodage du fichier (utf-8 par défaut)")
}

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List files uploaded to the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return filesRun()
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

func filesRun() error {
	client, err := getClient()
	if err != nil {
		return err
	}

	files, err := client.ListFiles(context.Background())
	if err != nil {
		return err
	}

	if len(files) == 0 {
		ui.Info("No files uploaded yet.")
		return nil
	}

	table := ui.Table([]string{"ID", "Name", "Size", "Uploaded"})
	for _, f := range files {
		_ = table.Append([]string{
			f.ID,
			f.Name,
			formatBytes(f.SizeBytes),
			f.UploadedAt,
		})
	}
	_ = table.Render()
	return nil
}

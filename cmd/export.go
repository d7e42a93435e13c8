package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/iksnae/thread-harvest/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	threadID  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived threads to files",
	Long: `Export archived threads to various formats (jsonl, md, yaml, json, txt).

You can export every archived thread or a single thread by ID.
Use 'thread-harvest list' to see available thread IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		archive, err := openStore()
		if err != nil {
			return err
		}
		defer archive.Close()

		var threads []*internal.Thread
		if threadID != "" {
			thread, err := archive.LoadThread(threadID)
			if err != nil {
				return err
			}
			threads = append(threads, thread)
		} else {
			threads, err = archive.LoadAllThreads()
			if err != nil {
				return err
			}
		}

		if len(threads) == 0 {
			internal.PrintInfo("No threads to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.ExportError{Format: exporter.Extension(), Path: outputDir, Err: err}
		}

		exported := 0
		for _, thread := range threads {
			path := filepath.Join(outputDir, fmt.Sprintf("thread_%s.%s", thread.ID, exporter.Extension()))
			if err := exportToFile(exporter, thread, path); err != nil {
				internal.LogWarn("Failed to export thread %s: %v", thread.ID, err)
				continue
			}
			exported++
		}

		internal.PrintSuccess(fmt.Sprintf("Exported %d thread(s) to %s", exported, outputDir))
		return nil
	},
}

func exportToFile(exporter export.Exporter, thread *internal.Thread, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	defer f.Close()

	if err := exporter.Export(thread, f); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

// writeThreadFile exports thread to out. When out is an existing directory
// the file is named after the thread ID.
func writeThreadFile(thread *internal.Thread, formatName, out string) (string, error) {
	exporter, err := export.NewExporter(formatName)
	if err != nil {
		return "", err
	}
	path := out
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		path = filepath.Join(out, fmt.Sprintf("thread_%s.%s", thread.ID, exporter.Extension()))
	} else if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &internal.ExportError{Format: exporter.Extension(), Path: out, Err: err}
		}
	}
	return path, exportToFile(exporter, thread, path)
}

// writeThread exports thread to w
func writeThread(w io.Writer, thread *internal.Thread, formatName string) error {
	exporter, err := export.NewExporter(formatName)
	if err != nil {
		return err
	}
	if err := exporter.Export(thread, w); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: "stdout", Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json, txt)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&threadID, "thread-id", "", "Export only this thread")
}

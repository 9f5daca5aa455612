package main

import (
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/extract"
	"github.com/prototypeforge/aicxo/internal/types"
)

var (
	fileCategory    string
	fileDescription string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage company files shared with the board",
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a company file and extract its text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		filename := filepath.Base(args[0])
		mimeType := mime.TypeByExtension(filepath.Ext(filename))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		result := extract.Text(filename, mimeType, data)

		file := &database.CompanyFile{
			UserID:           actingUser,
			Filename:         filename,
			Category:         fileCategory,
			MIMEType:         mimeType,
			Content:          result.Text,
			Description:      fileDescription,
			ExtractionStatus: result.Status,
			RawData:          data,
		}

		if err := a.files.Create(ctx, file); err != nil {
			return err
		}

		cmd.Printf("Uploaded %s as %s (extraction: %s, %d bytes)\n",
			filename, file.ID, file.ExtractionStatus, len(data))
		return nil
	},
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your company files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		files, err := a.files.ListByUser(ctx, actingUser)
		if err != nil {
			return err
		}

		for _, f := range files {
			cmd.Printf("%s  %-30s %-12s %-24s %s\n",
				f.ID, f.Filename, f.Category, f.MIMEType, f.ExtractionStatus)
		}
		return nil
	},
}

var filesShowCmd = &cobra.Command{
	Use:   "show <file-id>",
	Short: "Show a file's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		f, err := a.files.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if f.UserID != actingUser {
			return types.NewError(types.NOT_AUTHORIZED, "file belongs to another user")
		}

		cmd.Printf("%s (%s, %s)\n\n%s\n", f.Filename, f.Category, f.ExtractionStatus, f.Content)
		return nil
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <file-id>",
	Short: "Delete a company file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		f, err := a.files.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if f.UserID != actingUser {
			return types.NewError(types.NOT_AUTHORIZED, "file belongs to another user")
		}

		if err := a.files.Delete(ctx, id); err != nil {
			return err
		}

		cmd.Printf("Deleted file %s\n", id)
		return nil
	},
}

func init() {
	filesUploadCmd.Flags().StringVar(&fileCategory, "category", "general", "file category shown to the board")
	filesUploadCmd.Flags().StringVar(&fileDescription, "description", "", "optional file description")

	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesShowCmd)
	filesCmd.AddCommand(filesDeleteCmd)
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
	"github.com/sir_venger/multipart_lite/pkg/uploadclient"
)

const defaultServer = "http://localhost:8080"

type uploadParams struct {
	Server string
	Fields []string
	Files  []string
}

func newUploadCmd() *cobra.Command {
	params := &uploadParams{}
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Send fields and files to the upload service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := formNodes(params.Fields, params.Files)
			if err != nil {
				return err
			}

			cli := uploadclient.New(uploadclient.WithProgress(cmd.ErrOrStderr()))
			res, err := cli.Upload(cmd.Context(), params.Server, nodes)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&params.Server, "server", "s", defaultServer, "upload service base URL")
	cmd.Flags().StringArrayVar(&params.Fields, "field", nil, "form field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&params.Files, "file", nil, "file part as name=path (repeatable)")
	return cmd
}

type fetchParams struct {
	Server  string
	Chunked bool
	Files   bool
	Keep    bool
}

func newFetchCmd() *cobra.Command {
	params := &fetchParams{}
	cmd := &cobra.Command{
		Use:   "fetch <upload-id>",
		Short: "Download an upload and print its part tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := uploadclient.New(uploadclient.WithProgress(cmd.ErrOrStderr()))
			nodes, err := cli.Fetch(cmd.Context(), params.Server, args[0], uploadclient.FetchOptions{
				Chunked:        params.Chunked,
				AlwaysUseFiles: params.Files,
			})
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}

			if params.Keep {
				releaseFiles(nodes)
			} else {
				defer multipart.CloseNodes(nodes)
			}
			return printTree(cmd.OutOrStdout(), nodes, 0, params.Keep)
		},
	}

	cmd.Flags().StringVarP(&params.Server, "server", "s", defaultServer, "upload service base URL")
	cmd.Flags().BoolVar(&params.Chunked, "chunked", false, "ask for a chunked response")
	cmd.Flags().BoolVar(&params.Files, "files", false, "store every leaf part in a temporary file")
	cmd.Flags().BoolVar(&params.Keep, "keep", false, "keep temporary files and print their paths")
	return cmd
}

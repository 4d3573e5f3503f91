package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

type packParams struct {
	Fields   []string
	Files    []string
	Boundary string
	BodyOnly bool
	Chunked  bool
}

func newPackCmd() *cobra.Command {
	params := &packParams{}
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build a multipart/form-data message on stdout",
		Long: "Build a multipart/form-data message. The output starts with a Content-Type header " +
			"block so it can be fed back to inspect; --body-only omits it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return packRun(cmd, params)
		},
	}

	cmd.Flags().StringArrayVar(&params.Fields, "field", nil, "form field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&params.Files, "file", nil, "file part as name=path (repeatable)")
	cmd.Flags().StringVar(&params.Boundary, "boundary", "", "use this boundary instead of a generated one")
	cmd.Flags().BoolVar(&params.BodyOnly, "body-only", false, "omit the Content-Type header block")
	cmd.Flags().BoolVar(&params.Chunked, "chunked", false, "frame the body with chunked transfer coding")
	return cmd
}

func packRun(cmd *cobra.Command, params *packParams) error {
	nodes, err := formNodes(params.Fields, params.Files)
	if err != nil {
		return err
	}

	boundary := params.Boundary
	if boundary == "" {
		boundary = multipart.GenerateBoundary()
	}

	out := cmd.OutOrStdout()
	if !params.BodyOnly {
		if _, err := fmt.Fprintf(out, "Content-Type: %s\r\n", multipart.ContentType("form-data", boundary)); err != nil {
			return err
		}
		if params.Chunked {
			if _, err := fmt.Fprint(out, "Transfer-Encoding: chunked\r\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(out, "\r\n"); err != nil {
			return err
		}
	}

	if params.Chunked {
		return multipart.WriteMultipartChunked(out, boundary, nodes)
	}
	_, err = multipart.WriteMultipart(out, boundary, nodes)
	return err
}

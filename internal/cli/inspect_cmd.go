package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

type inspectParams struct {
	ContentType string
	Files       bool
	Keep        bool
}

func newInspectCmd() *cobra.Command {
	params := &inspectParams{}
	cmd := &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Parse a multipart message and print its part tree",
		Long: "Parse a multipart message read from a file or stdin. Without --content-type the input " +
			"must start with a header block carrying Content-Type; with it the input is the bare body.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectRun(cmd, params, args[0])
		},
	}

	cmd.Flags().StringVarP(&params.ContentType, "content-type", "t", "", "treat input as a bare body with this Content-Type")
	cmd.Flags().BoolVar(&params.Files, "files", false, "store every leaf part in a temporary file")
	cmd.Flags().BoolVar(&params.Keep, "keep", false, "keep temporary files and print their paths")
	return cmd
}

func inspectRun(cmd *cobra.Command, params *inspectParams, input string) error {
	var src io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var (
		nodes []multipart.Node
		err   error
	)
	if params.ContentType != "" {
		h := multipart.NewHeader(multipart.Field{Name: "Content-Type", Value: params.ContentType})
		nodes, err = multipart.ReadMultipartBody(src, h, params.Files)
	} else {
		nodes, err = multipart.ReadMultipart(src, params.Files)
	}
	if err != nil {
		return err
	}

	if params.Keep {
		releaseFiles(nodes)
	} else {
		defer multipart.CloseNodes(nodes)
	}

	return printTree(cmd.OutOrStdout(), nodes, 0, params.Keep)
}

func printTree(w io.Writer, nodes []multipart.Node, depth int, withPaths bool) error {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		var line string
		switch n := node.(type) {
		case *multipart.Part:
			line = fmt.Sprintf("part%s %d bytes", describe(n.Name(), contentType(n.ContentType())), len(n.Body))
		case *multipart.FilePart:
			name, _, err := n.Filename()
			if err != nil {
				return err
			}
			line = fmt.Sprintf("file%s", describe(n.Name(), contentType(n.ContentType())))
			if name != "" {
				line += fmt.Sprintf(" filename=%q", name)
			}
			line += fmt.Sprintf(" %d bytes", n.Size)
			if withPaths {
				line += " " + n.Path
			}
		case *multipart.Multipart:
			boundary, err := n.Boundary()
			if err != nil {
				return err
			}
			line = fmt.Sprintf("multipart%s boundary=%s", describe(n.Name(), ""), boundary)
		}

		if _, err := fmt.Fprintln(w, indent+line); err != nil {
			return err
		}
		if m, ok := node.(*multipart.Multipart); ok {
			if err := printTree(w, m.Nodes, depth+1, withPaths); err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(name, ctype string) string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, " name=%q", name)
	}
	if ctype != "" {
		b.WriteString(" type=" + ctype)
	}
	return b.String()
}

func contentType(mt multipart.MediaType, ok bool) string {
	if !ok {
		return ""
	}
	return mt.Essence()
}

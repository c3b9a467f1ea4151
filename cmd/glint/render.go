package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/glint-ui/glint/pkg/render"
)

func renderCmd() *cobra.Command {
	var out string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo page to HTML",
		Long:  `Render the built-in demo page to a static HTML document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			r := render.NewRenderer(render.RendererConfig{Pretty: pretty})
			for _, page := range demoPages() {
				if err := r.RenderPage(w, page); err != nil {
					return err
				}
			}
			if out != "" {
				success("wrote %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the HTML")

	return cmd
}

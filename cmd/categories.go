package cmd

import (
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured categories and their descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Category", "Description"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)

		if appInstance.Classifier != nil {
			for _, cat := range appInstance.Classifier.Categories() {
				table.Append([]string{cat.Name, cat.Description})
			}
		} else {
			names := make([]string, 0, len(appInstance.Config.Categories))
			for name := range appInstance.Config.Categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				table.Append([]string{name, appInstance.Config.Categories[name]})
			}
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

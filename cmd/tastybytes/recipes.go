package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pageza/tastybytes/backend/internal/export"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
)

func newRecipesCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recipe"},
		Short:   "Browse and manage recipes",
	}
	cmd.AddCommand(
		newRecipesListCmd(run),
		newRecipesShowCmd(run),
		newRecipesAddCmd(run),
		newRecipesEditCmd(run),
		newRecipesDeleteCmd(run),
		newRecipesExportCmd(run),
	)
	return cmd
}

func newRecipesListCmd(run runner) *cobra.Command {
	var vegetarian, nonVegetarian bool
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			projector := service.NewProjector(a.recipes)
			defer projector.Close()

			switch {
			case vegetarian:
				projector.SetFilter(boolPtr(true))
			case nonVegetarian:
				projector.SetFilter(boolPtr(false))
			}

			view := service.Search(projector.View(), search)
			if len(view) == 0 {
				cmd.Println("No recipes found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tTYPE\tTIME")
			for _, r := range view {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d min\n", r.ID, r.Title, r.AuthorName, dietLabel(r), r.TotalTime())
			}
			return w.Flush()
		}),
	}
	cmd.Flags().BoolVar(&vegetarian, "vegetarian", false, "Only vegetarian recipes")
	cmd.Flags().BoolVar(&nonVegetarian, "non-vegetarian", false, "Only non-vegetarian recipes")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title or author")
	cmd.MarkFlagsMutuallyExclusive("vegetarian", "non-vegetarian")
	return cmd
}

func newRecipesShowCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			r, err := a.recipes.Get(args[0])
			if err != nil {
				return err
			}
			printRecipe(cmd, r)
			return nil
		}),
	}
}

// recipeFlags binds the editable recipe fields to flags.
type recipeFlags struct {
	title        string
	description  string
	ingredients  []string
	instructions []string
	imageURL     string
	prepTime     int
	cookTime     int
	servings     int
	vegetarian   bool
}

func (f *recipeFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "Recipe title")
	fs.StringVar(&f.description, "description", "", "Short description")
	fs.StringArrayVar(&f.ingredients, "ingredient", nil, "Ingredient line (repeatable)")
	fs.StringArrayVar(&f.instructions, "instruction", nil, "Instruction step (repeatable)")
	fs.StringVar(&f.imageURL, "image", "", "Image URL")
	fs.IntVar(&f.prepTime, "prep", 0, "Preparation time in minutes")
	fs.IntVar(&f.cookTime, "cook", 0, "Cooking time in minutes")
	fs.IntVar(&f.servings, "servings", 0, "Number of servings")
	fs.BoolVar(&f.vegetarian, "vegetarian", false, "Vegetarian recipe")
}

func (f *recipeFlags) draft() models.RecipeDraft {
	return models.RecipeDraft{
		Title:        f.title,
		Description:  f.description,
		Ingredients:  f.ingredients,
		Instructions: f.instructions,
		ImageURL:     f.imageURL,
		PrepTime:     f.prepTime,
		CookTime:     f.cookTime,
		Servings:     f.servings,
		IsVegetarian: f.vegetarian,
	}
}

// patch holds only the flags given on the command line.
func (f *recipeFlags) patch(cmd *cobra.Command) models.RecipePatch {
	changed := cmd.Flags().Changed
	var p models.RecipePatch
	if changed("title") {
		p.Title = &f.title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("ingredient") {
		p.Ingredients = &f.ingredients
	}
	if changed("instruction") {
		p.Instructions = &f.instructions
	}
	if changed("image") {
		p.ImageURL = &f.imageURL
	}
	if changed("prep") {
		p.PrepTime = &f.prepTime
	}
	if changed("cook") {
		p.CookTime = &f.cookTime
	}
	if changed("servings") {
		p.Servings = &f.servings
	}
	if changed("vegetarian") {
		p.IsVegetarian = &f.vegetarian
	}
	return p
}

func newRecipesAddCmd(run runner) *cobra.Command {
	f := &recipeFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe as the signed-in user",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			r, err := a.recipes.Add(cmd.Context(), f.draft(), a.session.CurrentUser())
			if err != nil {
				return err
			}
			cmd.Printf("Added %q (%s)\n", r.Title, r.ID)
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func newRecipesEditCmd(run runner) *cobra.Command {
	f := &recipeFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of one of your recipes",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			r, err := a.recipes.Update(cmd.Context(), args[0], f.patch(cmd), a.session.CurrentUser())
			if err != nil {
				return err
			}
			cmd.Printf("Updated %q\n", r.Title)
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func newRecipesDeleteCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your recipes",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.recipes.Delete(cmd.Context(), args[0], a.session.CurrentUser()); err != nil {
				return err
			}
			cmd.Println("Recipe deleted")
			return nil
		}),
	}
}

func newRecipesExportCmd(run runner) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Save a recipe as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			r, err := a.recipes.Get(args[0])
			if err != nil {
				return err
			}
			data, err := export.Export(r)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, export.Filename(r.Title))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			cmd.Printf("Saved %s\n", path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the PDF to")
	return cmd
}

func printRecipe(cmd *cobra.Command, r models.Recipe) {
	cmd.Println(r.Title)
	cmd.Printf("By %s, %s\n", r.AuthorName, r.CreatedAt.Format("1/2/2006"))
	cmd.Println(dietLabel(r))
	cmd.Println()
	cmd.Println(r.Description)
	cmd.Println()
	cmd.Printf("Prep %d min, cook %d min, total %d min, serves %d\n", r.PrepTime, r.CookTime, r.TotalTime(), r.Servings)
	cmd.Println()
	cmd.Println("Ingredients:")
	for _, line := range r.Ingredients {
		cmd.Printf("  • %s\n", line)
	}
	cmd.Println()
	cmd.Println("Instructions:")
	for i, step := range r.Instructions {
		cmd.Printf("  %d. %s\n", i+1, step)
	}
}

func dietLabel(r models.Recipe) string {
	if r.IsVegetarian {
		return "Vegetarian"
	}
	return "Non-Vegetarian"
}

func boolPtr(b bool) *bool {
	return &b
}

// describe turns service errors into the messages shown to the user.
func describe(err error) error {
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		return errors.New("please sign in first (tastybytes login)")
	case errors.Is(err, service.ErrForbidden):
		return errors.New("you can only change your own recipes")
	case errors.Is(err, service.ErrNotFound):
		return errors.New("recipe not found")
	}
	return err
}

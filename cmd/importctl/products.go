package main

import (
	"context"
	"flag"
	"fmt"

	"prodimport/internal/models"
)

func (a *app) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("products needs a subcommand: list, get, create, update, delete, purge")
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "list":
		fs := newFlagSet("products list")
		page := fs.Int("page", 1, "Page number")
		sku := fs.String("sku", "", "Filter by SKU")
		name := fs.String("name", "", "Filter by name")
		description := fs.String("description", "", "Filter by description")
		active := fs.String("active", "", "Filter by active flag: true, false")
		asJSON := fs.Bool("json", false, "Print JSON")
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		if *active != "" && *active != "true" && *active != "false" {
			return fmt.Errorf("-active must be true or false")
		}

		result, err := a.client.ListProducts(ctx, *page, models.ProductFilter{
			SKU: *sku, Name: *name, Description: *description, Active: *active,
		})
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(a.stdout, result)
		}
		return writeProducts(a.stdout, result)

	case "get":
		id, err := singleID("products get", args)
		if err != nil {
			return err
		}
		p, err := a.client.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, p)

	case "create":
		fs := newFlagSet("products create")
		in := productFlags(fs)
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		p, err := a.client.CreateProduct(ctx, *in)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, p)

	case "update":
		fs := newFlagSet("products update")
		in := productFlags(fs)
		positional, err := parseArgs(fs, args)
		if err != nil {
			return err
		}
		if len(positional) != 1 {
			return fmt.Errorf("products update needs exactly one ID")
		}
		current, err := a.client.GetProduct(ctx, positional[0])
		if err != nil {
			return err
		}

		// 指定されなかった項目は現在の値を使う
		set := visited(fs)
		merged := models.ProductInput{
			SKU: current.SKU, Name: current.Name, Description: current.Description, Active: current.Active,
		}
		if set["sku"] {
			merged.SKU = in.SKU
		}
		if set["name"] {
			merged.Name = in.Name
		}
		if set["description"] {
			merged.Description = in.Description
		}
		if set["active"] {
			merged.Active = in.Active
		}

		p, err := a.client.UpdateProduct(ctx, positional[0], merged)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, p)

	case "delete":
		id, err := singleID("products delete", args)
		if err != nil {
			return err
		}
		if err := a.client.DeleteProduct(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted product %s\n", id)
		return nil

	case "purge":
		fs := newFlagSet("products purge")
		yes := fs.Bool("yes", false, "Confirm deleting every product")
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		if !*yes {
			return fmt.Errorf("refusing to delete all products without -yes")
		}
		if err := a.client.DeleteAllProducts(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Deleted all products")
		return nil

	default:
		return fmt.Errorf("unknown products subcommand %q", sub)
	}
}

func productFlags(fs *flag.FlagSet) *models.ProductInput {
	in := &models.ProductInput{}
	fs.StringVar(&in.SKU, "sku", "", "Product SKU")
	fs.StringVar(&in.Name, "name", "", "Product name")
	fs.StringVar(&in.Description, "description", "", "Product description")
	fs.BoolVar(&in.Active, "active", true, "Whether the product is active")
	return in
}

func singleID(cmd string, args []string) (string, error) {
	fs := newFlagSet(cmd)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return "", err
	}
	if len(positional) != 1 {
		return "", fmt.Errorf("%s needs exactly one ID", cmd)
	}
	return positional[0], nil
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"supplynorm/storage"
)

var offersDBPath string

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List and delete stored supplier offers.",
	Long: `Every imported file is stored as one supplier offer with its offer items.
Products are shared between offers and remain when an offer is deleted.`,
}

var offersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored supplier offers",
	Example: `
  supplynorm offers list --db ./supplynorm.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(resolveDBPath(offersDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		listings, err := store.ListSupplierOffers()
		if err != nil {
			return err
		}
		return printOfferListings(os.Stdout, listings)
	},
}

var offersDeleteCmd = &cobra.Command{
	Use:   "delete <offer-id>",
	Short: "Delete one stored supplier offer and its offer items",
	Args:  cobra.ExactArgs(1),
	Example: `
  supplynorm offers delete 3f6c2a9e-0d7b-4c1e-9d51-0b8a6f1f2c11
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(resolveDBPath(offersDBPath))
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.DeleteSupplierOffer(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("supplier offer %s not found", args[0])
		}
		fmt.Printf("Deleted supplier offer: %s\n", args[0])
		return nil
	},
}

func printOfferListings(out io.Writer, listings []storage.OfferListing) error {
	if len(listings) == 0 {
		_, err := fmt.Fprintln(out, "No supplier offers stored.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUPPLIER\tFILE\tCREATED\tITEMS\tROWS\tSKIPPED\tERRORS")
	for _, listing := range listings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			listing.Offer.ID,
			listing.Offer.SupplierName,
			listing.Offer.SourceFile,
			listing.Offer.CreatedAt.Local().Format(time.DateTime),
			listing.Items,
			listing.RowsProcessed,
			listing.ProductsSkipped,
			listing.ErrorCount,
		)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(offersCmd)
	offersCmd.AddCommand(offersListCmd)
	offersCmd.AddCommand(offersDeleteCmd)

	offersCmd.PersistentFlags().StringVar(&offersDBPath, "db", "", "Path to local SQLite database (default: database.path from config)")
}

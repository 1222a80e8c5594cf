package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"bookshelf/internal/book"
	"bookshelf/internal/user"
)

var seedWords = []string{
	"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
	"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
	"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
	"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
}

var seedAuthors = []string{
	"Ada Byron", "Jorge Borges", "Ursula Guin", "Italo Calvino", "Toni Morrison", "Stanislaw Lem",
}

func (c *cli) seedCmd() *cobra.Command {
	var (
		users    int
		books    int
		password string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo users, each with a shelf of generated books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cn, err := openConn(ctx, c.dsn())
			if err != nil {
				return err
			}
			defer cn.close()

			svc := user.NewService(cn.users)
			for i := 1; i <= users; i++ {
				u, err := svc.Register(ctx, fmt.Sprintf("reader%d", i), password)
				if err != nil {
					return fmt.Errorf("seed reader%d: %w", i, err)
				}

				shelf := make([]*book.Book, 0, books)
				for j := 1; j <= books; j++ {
					shelf = append(shelf, &book.Book{
						OwnerID:     u.ID,
						ExternalID:  fmt.Sprintf("seed-%d-%d", u.ID, j),
						Title:       fmt.Sprintf("Book Title %d - %s", j, randomWord()),
						Authors:     []string{seedAuthors[rand.Intn(len(seedAuthors))]},
						Description: fmt.Sprintf("This is a book about %s.", randomWord()),
					})
				}
				if _, err := cn.books.CreateBatch(ctx, shelf); err != nil {
					return fmt.Errorf("seed books for %s: %w", u.Username, err)
				}
				c.logger.WithField("user", u.Username).WithField("books", books).Info("seeded")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully seeded %d users with %d books each\n", users, books)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 3, "number of demo users")
	cmd.Flags().IntVar(&books, "books", 10, "books per demo user")
	cmd.Flags().StringVar(&password, "password", "password", "password for every demo user")
	return cmd
}

func randomWord() string {
	return seedWords[rand.Intn(len(seedWords))]
}

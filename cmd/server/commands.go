package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/song-sponsorship/internal/catalog"
	"github.com/iliyamo/song-sponsorship/internal/database"
	"github.com/iliyamo/song-sponsorship/internal/logger"
	"github.com/iliyamo/song-sponsorship/internal/repository"
	"github.com/iliyamo/song-sponsorship/internal/service"
	"github.com/iliyamo/song-sponsorship/internal/utils"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			log := logger.New(cfg.Env)
			log.Info().Str("db", cfg.DBDriver).Msg("schema up to date")
			return nil
		},
	}
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-load songs from a CSV file, '-' reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			db, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			log := logger.New(cfg.Env)
			svc := service.NewCatalogService(repository.NewSongRepo(db), nil, log)
			n, err := svc.ImportCSV(cmd.Context(), src)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d Songs erfolgreich erstellt\n", n)
			return nil
		},
	}
}

func exportCommand() *cobra.Command {
	var (
		out   string
		songs bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the sponsor export (or the song catalog with --songs) as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if songs {
				list, err := repository.NewSongRepo(db).List(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([]catalog.SongRow, 0, len(list))
				for _, s := range list {
					rows = append(rows, catalog.RowFromSong(s))
				}
				return catalog.EncodeSongs(w, rows)
			}
			list, err := repository.NewSponsorRepo(db).List(cmd.Context())
			if err != nil {
				return err
			}
			return catalog.EncodeSponsors(w, list)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	cmd.Flags().BoolVar(&songs, "songs", false, "export the song catalog in import format")
	return cmd
}

func hashPasswordCommand() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			plain := strings.TrimRight(line, "\r\n")
			if plain == "" {
				return fmt.Errorf("empty password")
			}
			hash, err := utils.HashPassword(plain, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

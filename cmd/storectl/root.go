package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"ShopFront/config"
	"ShopFront/internal/session"
)

// storectl drives a ShopFront session from the terminal. Without --api it
// runs against the built-in mock accounts; with --api it talks to a real
// storefront.

type cliOpts struct {
	api         string
	sessionFile string
}

func newRootCmd() *cobra.Command {
	opts := &cliOpts{}

	root := &cobra.Command{
		Use:           "storectl",
		Short:         "ShopFront session and catalog client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cfg := config.Load()
	root.PersistentFlags().StringVar(&opts.api, "api", cfg.Session.APIBase, "storefront base URL (empty = mock mode)")
	root.PersistentFlags().StringVar(&opts.sessionFile, "session-file", cfg.Session.SnapshotPath, "session snapshot path")

	root.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newSetRoleCmd(opts),
		newProductsCmd(opts),
	)

	return root
}

func (o *cliOpts) store() *session.Store {
	cfg := config.Load()

	return session.New(session.Options{
		APIBase:      o.api,
		SnapshotPath: o.sessionFile,
		DevLogin:     cfg.Session.DevLogin,
	})
}

func newLoginCmd(opts *cliOpts) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := opts.store()
			err := s.Login(cmd.Context(), session.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s.State().User)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(opts *cliOpts) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log it in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := opts.store()
			err := s.Register(cmd.Context(), session.RegisterPayload{Email: email, Password: password, Name: name})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s.State().User)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *cliOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.store().Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *cliOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Refresh and print the current identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := opts.store()
			if err := s.FetchProfile(cmd.Context()); err != nil {
				return err
			}

			st := s.State()
			fmt.Fprintf(cmd.OutOrStdout(), "admin: %v\n", s.IsAdmin())
			return printJSON(cmd.OutOrStdout(), st.User)
		},
	}
}

func newSetRoleCmd(opts *cliOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user|admin>",
		Short: "Switch the local session role (dev only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if !cfg.Session.DevLogin {
				return session.ErrDevLoginDisabled
			}

			s := opts.store()
			if s.State().User == nil {
				return errors.New("not logged in")
			}

			s.SetRole(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "role: %s admin: %v\n", s.State().User.Role, s.IsAdmin())
			return nil
		},
	}
}

func newProductsCmd(opts *cliOpts) *cobra.Command {
	var (
		search, category, sortKey string
		inStock                   bool
		page                      int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products from the storefront",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.api == "" {
				return errors.New("products requires --api")
			}

			q := url.Values{}
			if search != "" {
				q.Set("search", search)
			}
			if category != "" {
				q.Set("category", category)
			}
			if inStock {
				q.Set("in_stock", "true")
			}
			if sortKey != "" {
				q.Set("sort", sortKey)
			}
			if page > 1 {
				q.Set("page", strconv.Itoa(page))
			}

			u := opts.api + "/products"
			if enc := q.Encode(); enc != "" {
				u += "?" + enc
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("storefront returned %d: %s", resp.StatusCode, body)
			}

			var out json.RawMessage
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "title substring filter")
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().BoolVar(&inStock, "in-stock", false, "only in-stock products")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key: price-asc, price-desc, title")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

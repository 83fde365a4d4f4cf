package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lborres/reisetagebuch"
	"github.com/lborres/reisetagebuch/adapters/badger"
	"github.com/lborres/reisetagebuch/core"
	"github.com/lborres/reisetagebuch/pkg/kv"
	"github.com/lborres/reisetagebuch/services"
)

var errNotLoggedIn = errors.New("not logged in")

func newLocalCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Manage the on-device journal",
		Long: `Manage accounts, trips, bucket-list goals and profiles in the local store.

The store lives in LOCAL_STORE_PATH. Without it every invocation starts empty.`,
	}

	cmd.AddCommand(
		newRegisterCmd(c),
		newVerifyCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newTripCmd(c),
		newBucketCmd(c),
		newProfileCmd(c),
		newSyncCmd(c),
	)
	return cmd
}

// withLocal opens the local store for the duration of fn
func (c *cli) withLocal(fn func(*reisetagebuch.Local) error) error {
	hasher, err := core.NewPasswordHandler(c.cfg.PasswordHasher)
	if err != nil {
		return err
	}

	var store core.KVStorage = kv.NewMemory()
	if c.cfg.LocalStorePath != "" {
		cfg := badger.DefaultConfig(c.cfg.LocalStorePath)
		cfg.Logger = c.logger
		db, err := badger.Open(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				c.logger.Error("closing local store", slog.String("error", err.Error()))
			}
		}()
		store = db
	}

	return fn(reisetagebuch.NewLocal(reisetagebuch.LocalConfig{
		KV:             store,
		PasswordHasher: hasher,
		VerifyBaseURL:  c.cfg.VerifyBaseURL,
		Logger:         c.logger,
	}))
}

// withUser is withLocal for commands that act on the logged-in user
func (c *cli) withUser(fn func(*reisetagebuch.Local, core.StoredUser) error) error {
	return c.withLocal(func(local *reisetagebuch.Local) error {
		user := local.Auth.CurrentUser()
		if user == nil {
			return errNotLoggedIn
		}
		return fn(local, *user)
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// Accounts

func newRegisterCmd(c *cli) *cobra.Command {
	var input services.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account and print its verification link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLocal(func(local *reisetagebuch.Local) error {
				res, err := local.Auth.Register(input)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.VerificationLink)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.BirthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	return cmd
}

func newVerifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify EMAIL",
		Short: "Mark an account as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLocal(func(local *reisetagebuch.Local) error {
				user, err := local.Auth.Verify(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "verified %s\n", user.Email)
				return nil
			})
		},
	}
}

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL PASSWORD",
		Short: "Log in as a verified account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLocal(func(local *reisetagebuch.Local) error {
				user, err := local.Auth.Login(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", user.Email)
				return nil
			})
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLocal(func(local *reisetagebuch.Local) error {
				return local.Auth.Logout()
			})
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withUser(func(_ *reisetagebuch.Local, user core.StoredUser) error {
				user.Password = ""
				return printJSON(cmd, user)
			})
		},
	}
}

// Trips

func newTripCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Manage trips of the logged-in user",
	}

	var input core.TripInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				trip, err := local.Trips.Create(user.ID, input)
				if err != nil {
					return err
				}
				return printJSON(cmd, trip)
			})
		},
	}
	add.Flags().StringVar(&input.Title, "title", "", "trip title")
	add.Flags().StringVar(&input.Country, "country", "", "country visited")
	add.Flags().IntVar(&input.Year, "year", 0, "year of travel")
	add.Flags().StringVar(&input.WithWhom, "with", "", "travel companions")
	add.Flags().StringVar(&input.Description, "description", "", "free text")

	list := &cobra.Command{
		Use:   "list",
		Short: "List trips, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				return printJSON(cmd, local.Trips.TripsForUser(user.ID))
			})
		},
	}

	photo := &cobra.Command{
		Use:   "photo ID IMAGE",
		Short: "Attach a photo (URL or data URL) to a trip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withUser(func(local *reisetagebuch.Local, _ core.StoredUser) error {
				trip, err := local.Trips.AddPhoto(id, args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, trip)
			})
		},
	}

	location := &cobra.Command{
		Use:   "location ID LAT LNG",
		Short: "Add a coordinate pair to a trip",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[1])
			}
			lng, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[2])
			}
			return c.withUser(func(local *reisetagebuch.Local, _ core.StoredUser) error {
				trip, err := local.Trips.AddLocation(id, lat, lng)
				if err != nil {
					return err
				}
				return printJSON(cmd, trip)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withUser(func(local *reisetagebuch.Local, _ core.StoredUser) error {
				return local.Trips.Delete(id)
			})
		},
	}

	cmd.AddCommand(add, list, photo, location, rm)
	return cmd
}

// Bucket list

func newBucketCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Manage bucket-list goals of the logged-in user",
	}

	var (
		title, category string
		year            int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				input := core.BucketInput{UserID: user.ID, Title: title}
				if cmd.Flags().Changed("category") {
					input.Category = &category
				}
				if cmd.Flags().Changed("year") {
					input.TargetYear = &year
				}
				item, err := local.Bucket.Add(input)
				if err != nil {
					return err
				}
				return printJSON(cmd, item)
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "goal title")
	add.Flags().StringVar(&category, "category", "", "category (default Allgemein)")
	add.Flags().IntVar(&year, "year", 0, "target year")

	list := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				return printJSON(cmd, local.Bucket.ItemsForUser(user.ID))
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip the done flag of a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withUser(func(local *reisetagebuch.Local, _ core.StoredUser) error {
				item, err := local.Bucket.ToggleDone(id)
				if err != nil {
					return err
				}
				return printJSON(cmd, item)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withUser(func(local *reisetagebuch.Local, _ core.StoredUser) error {
				return local.Bucket.Remove(id)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every goal of every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLocal(func(local *reisetagebuch.Local) error {
				return local.Bucket.ClearAll()
			})
		},
	}

	cmd.AddCommand(add, list, toggle, rm, clearCmd)
	return cmd
}

// Profile

func newProfileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the profile of the logged-in user",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				profile, err := local.Profiles.ForUser(user.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd, profile)
			})
		},
	}

	var (
		bio, avatar string
		clearAvatar bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update bio and avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch core.ProfilePatch
			if cmd.Flags().Changed("bio") {
				patch.Bio = &bio
			}
			if cmd.Flags().Changed("avatar") {
				patch.AvatarURL = &avatar
			}
			patch.ClearAvatarURL = clearAvatar
			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				profile, err := local.Profiles.Update(user.ID, patch)
				if err != nil {
					return err
				}
				return printJSON(cmd, profile)
			})
		},
	}
	set.Flags().StringVar(&bio, "bio", "", "profile text")
	set.Flags().StringVar(&avatar, "avatar", "", "avatar URL or data URL")
	set.Flags().BoolVar(&clearAvatar, "clear-avatar", false, "remove the avatar")

	cmd.AddCommand(show, set)
	return cmd
}

// Sync

func newSyncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the logged-in user's profile and trips to the document store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := c.documentProvider()
			if err != nil {
				return err
			}
			defer func() {
				if err := documents.Close(context.Background()); err != nil {
					c.logger.Error("closing document store", slog.String("error", err.Error()))
				}
			}()

			images, err := c.imageStorage(cmd.Context())
			if err != nil {
				return err
			}
			remote := services.RemoteConfig{Documents: documents, Logger: c.logger}
			if images != nil {
				remote.Images = services.NewImageUploader(images, c.logger)
			}

			return c.withUser(func(local *reisetagebuch.Local, user core.StoredUser) error {
				n, err := syncUser(cmd.Context(), remote, local, user)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d trips\n", n)
				return nil
			})
		},
	}
}

// syncUser pushes the profile first so the users document exists before any trip
func syncUser(ctx context.Context, remote services.RemoteConfig, local *reisetagebuch.Local, user core.StoredUser) (int, error) {
	profile := core.ProfileSync{
		ID:       strconv.FormatInt(user.ID, 10),
		Email:    &user.Email,
		FullName: &user.Name,
	}
	if first, last, ok := strings.Cut(user.Name, " "); ok {
		profile.FirstName, profile.LastName = &first, &last
	}
	if skipped, err := services.NewProfileSyncService(remote).SyncProfile(ctx, profile); err != nil {
		return 0, fmt.Errorf("profile: %w", err)
	} else if skipped != "" {
		return 0, fmt.Errorf("%w: %s", core.ErrUnconfigured, skipped)
	}

	reisen := services.NewReisenService(remote)
	trips := local.Trips.TripsForUser(user.ID)
	for _, trip := range trips {
		doc := core.TripToReiseDoc(trip)
		if _, err := reisen.UpsertTrip(ctx, doc, nil); err != nil {
			return 0, fmt.Errorf("trip %d: %w", trip.ID, err)
		}
	}
	return len(trips), nil
}

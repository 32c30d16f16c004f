// Package main provides the entry point for the VPN Access application.
// VPN Access manages access credentials ("tokens") for a VPN server fleet:
// it imports access keys into client profiles, resolves which server
// locations and access tiers are available to the current client, and
// runs throughput diagnostics against a test endpoint.
//
// Usage:
//
//	vpn-access import <access-key>
//	vpn-access list
//	vpn-access locations [profile-id]
//	vpn-access update <profile-id> [--name NAME] [--favorite] [--custom-data DATA]
//	vpn-access remove <profile-id>
//	vpn-access select <profile-id> [server-location]
//	vpn-access set-country <country-code>
//	vpn-access nettest --server URL [--length N] [--connections N] [--up] [--down]
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yllada/vpn-access/common"
	"github.com/yllada/vpn-access/keyring"
	"github.com/yllada/vpn-access/nettester"
	"github.com/yllada/vpn-access/profile"
	"github.com/yllada/vpn-access/settings"
	"github.com/yllada/vpn-access/token"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
var appVersion = "dev"

var (
	debugFlag bool
	dirFlag   string

	store        *profile.Store
	userSettings *settings.Settings
)

var rootCmd = &cobra.Command{
	Use:     "vpn-access",
	Short:   "Manage VPN access credentials and entitlements",
	Version: appVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if debugFlag {
			common.GetLogger().SetLevel(common.LevelDebug)
		}

		dir := dirFlag
		if dir == "" {
			dir = viper.GetString("storage_dir")
		}
		if dir == "" {
			if dir, err = common.GetConfigDir(); err != nil {
				return err
			}
		}

		if err := common.GetLogger().EnableFileLogging(dir); err != nil {
			common.LogWarn("file logging disabled: %v", err)
		}

		userSettings, err = settings.Load(dir)
		if err != nil {
			return err
		}

		store, err = profile.NewStore(dir, keyring.New(dir))
		if err != nil {
			return err
		}
		store.Reload(userSettings.ClientCountry)

		return reconcileBuiltIn()
	},
}

// reconcileBuiltIn replaces the built-in profile set with the access keys
// configured for the application, if any.
func reconcileBuiltIn() error {
	keys := viper.GetStringSlice("builtin_access_keys")
	if len(keys) == 0 {
		return nil
	}

	var tokens []*token.Token
	for _, key := range keys {
		t, err := token.FromAccessKey(key)
		if err != nil {
			common.LogWarn("skipping built-in access key: %v", err)
			continue
		}
		tokens = append(tokens, t)
	}
	return store.ReconcileBuiltIn(tokens)
}

var importCmd = &cobra.Command{
	Use:   "import <access-key>",
	Short: "Import an access key as a client profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := store.ImportAccessKey(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported profile %s (%s)\n", item.Profile.ProfileID, item.Info.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List client profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := store.List()
		if len(profiles) == 0 {
			fmt.Println("No client profiles. Use 'vpn-access import' to add one.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROFILE\tNAME\tTOKEN\tBUILT-IN\tFAVORITE")
		fmt.Fprintln(w, "-------\t----\t-----\t--------\t--------")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				shortID(p.ProfileID), p.DisplayName(), shortID(p.TokenID),
				yesNo(p.IsBuiltIn), yesNo(p.IsFavorite))
		}
		return w.Flush()
	},
}

var locationsCmd = &cobra.Command{
	Use:   "locations [profile-id]",
	Short: "Show selectable server locations and their access options",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileID := userSettings.ProfileID
		if len(args) > 0 {
			profileID = args[0]
		}
		if profileID == "" {
			profileID = store.DefaultProfileID()
		}
		if profileID == "" {
			return common.ErrProfileNotFound
		}

		item, err := store.Get(profileID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LOCATION\tDEFAULT\tFREE\tPREMIUM\tTAGS")
		fmt.Fprintln(w, "--------\t-------\t----\t-------\t----")
		for _, info := range item.Info.ServerLocationInfos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
				info.ServerLocation, yesNo(info.IsDefault),
				yesNo(info.Options.HasFree), yesNo(info.Options.HasPremium), info.Tags)
		}
		return w.Flush()
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <profile-id>",
	Short: "Update profile metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Only flags the user actually set become part of the patch, so
		// clearing a field and leaving it untouched stay distinguishable.
		var params profile.UpdateParams
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			params.Name = profile.Set(name)
		}
		if cmd.Flags().Changed("favorite") {
			favorite, _ := cmd.Flags().GetBool("favorite")
			params.IsFavorite = profile.Set(favorite)
		}
		if cmd.Flags().Changed("custom-data") {
			data, _ := cmd.Flags().GetString("custom-data")
			params.CustomData = profile.Set(data)
		}

		item, err := store.Update(args[0], params)
		if err != nil {
			return err
		}
		fmt.Printf("Updated profile %s\n", item.Profile.ProfileID)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <profile-id>",
	Short: "Remove a client profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Println("Profile removed.")
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <profile-id> [server-location]",
	Short: "Select the active profile and server location",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := store.Get(args[0])
		if err != nil {
			return err
		}

		userSettings.ProfileID = item.Profile.ProfileID
		userSettings.ServerLocation = ""
		if len(args) > 1 {
			userSettings.ServerLocation = args[1]
		}
		if err := userSettings.Save(); err != nil {
			return err
		}

		selected := item.FindLocation(userSettings.ServerLocation)
		if selected == nil {
			fmt.Printf("Selected profile %s (no server locations)\n", item.Info.Name)
			return nil
		}
		fmt.Printf("Selected profile %s, location %s %v\n",
			item.Info.Name, selected.ServerLocation, selected.Tags)
		return nil
	},
}

var setCountryCmd = &cobra.Command{
	Use:   "set-country <country-code>",
	Short: "Set the client country context used for entitlement resolution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userSettings.ClientCountry = args[0]
		if err := userSettings.Save(); err != nil {
			return err
		}
		store.Reload(userSettings.ClientCountry)
		fmt.Printf("Client country set to %s\n", userSettings.ClientCountry)
		return nil
	},
}

var nettestCmd = &cobra.Command{
	Use:   "nettest",
	Short: "Measure upload/download throughput against a test server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		if server == "" {
			server = viper.GetString("nettest.server")
		}
		if server == "" {
			return fmt.Errorf("no test server configured; pass --server or set nettest.server")
		}

		length, _ := cmd.Flags().GetInt64("length")
		connections, _ := cmd.Flags().GetInt("connections")
		up, _ := cmd.Flags().GetBool("up")
		down, _ := cmd.Flags().GetBool("down")
		if !up && !down {
			up, down = true, true
		}

		client := nettester.NewClient(server)
		ctx := context.Background()
		if up {
			client.Upload(ctx, length, connections)
		}
		if down {
			client.Download(ctx, length, connections)
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Storage directory (default: ~/.config/vpn-access)")

	updateCmd.Flags().String("name", "", "Display name override (empty clears it)")
	updateCmd.Flags().Bool("favorite", false, "Mark or unmark as favorite")
	updateCmd.Flags().String("custom-data", "", "Opaque custom data (empty clears it)")

	nettestCmd.Flags().String("server", "", "Test server base URL")
	nettestCmd.Flags().Int64("length", common.DefaultTestLength, "Bytes to transfer per direction")
	nettestCmd.Flags().Int("connections", common.DefaultTestConnections, "Concurrent connections")
	nettestCmd.Flags().Bool("up", false, "Run the upload test")
	nettestCmd.Flags().Bool("down", false, "Run the download test")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(setCountryCmd)
	rootCmd.AddCommand(nettestCmd)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.config/vpn-access")
	viper.AddConfigPath("/etc/vpn-access/")
	viper.SetEnvPrefix("VPN_ACCESS")
	viper.AutomaticEnv()

	// A missing config file is fine; everything has a flag or default.
	if err := viper.ReadInConfig(); err == nil {
		common.LogDebug("using config file %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

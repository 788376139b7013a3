// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"

	"github.com/go-arcade/iam/internal/bootstrap"
	"github.com/go-arcade/iam/pkg/version"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "iam",
	Short:         "iam is the identity and access management core",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var migrateFirst bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and metrics servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := initApp(configFile)
		if err != nil {
			return err
		}
		if migrateFirst {
			if err := app.Migrate(); err != nil {
				cleanup()
				return err
			}
		}
		return bootstrap.Run(app, cleanup)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := initApp(configFile)
		if err != nil {
			return err
		}
		defer cleanup()
		return app.Migrate()
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var (
	username string
	password string
	roles    string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, e.g. iam user create --username admin --password *** --roles ADMIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := initApp(configFile)
		if err != nil {
			return err
		}
		defer cleanup()

		profile, err := app.CreateUser(context.Background(), username, password, bootstrap.SplitCodes(roles))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %s created, id=%d roles=%v\n", profile.Username, profile.Id, profile.RoleCodes)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path, e.g. -c ./conf.d/config.toml")
	serveCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "run database migration before serving")

	userCreateCmd.Flags().StringVar(&username, "username", "", "login name")
	userCreateCmd.Flags().StringVar(&password, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&roles, "roles", "", "comma separated role codes, created when missing")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd, version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

// Command honorctl is the operator tool for the honor ledger.
//
//	honorctl migrate
//	honorctl leaderboard [n]
//	honorctl redemptions <user id>
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/webuild-community/honor/database"
	"github.com/webuild-community/honor/service/user"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: honorctl migrate | leaderboard [n] | redemptions <user id>")
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage()
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}
	db, err := database.Open(dsn, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer database.Close(db)

	ctx := context.Background()
	userSvc := user.NewPGService(db)

	switch os.Args[1] {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("migrated")

	case "leaderboard":
		n := 10
		if len(os.Args) > 2 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n <= 0 {
				usage()
			}
		}
		standings, err := userSvc.Top(ctx, n)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		pp.Println(standings)

	case "redemptions":
		if len(os.Args) < 3 {
			usage()
		}
		u, ok, err := userSvc.Find(ctx, os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "user %s not found\n", os.Args[2])
			os.Exit(1)
		}
		redemptions, err := userSvc.Redemptions(ctx, u.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		pp.Println(u)
		pp.Println(redemptions)

	default:
		usage()
	}
}

// Create a pre-verified user for logging in to the trading simulator.
package main

import (
	"fmt"
	"os"

	"github.com/dense-analysis/tradewarp/internal/config"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/user"
)

func main() {
	settings, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %s\n", err)
		os.Exit(1)
	}

	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: adduser <username> <password> <email>\n")
		os.Exit(1)
	}

	conn, err := database.Connect(&settings.Database)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer conn.Close()

	created, err := user.Provision(conn, user.Request{
		Username: os.Args[1],
		Password: os.Args[2],
		Email:    os.Args[3],
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created user %s with id %d\n", created.Username, created.ID)
}

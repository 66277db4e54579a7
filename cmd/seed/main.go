// Command seed creates the initial admin (or any other principal) directly
// in the database. The password is read from the terminal without echo.
//
//	seed -email admin@example.com -name Admin -role admin
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/flagx"
	"github.com/dmitrijs2005/atskeeper/internal/server/auth"
	"github.com/dmitrijs2005/atskeeper/internal/server/config"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/atskeeper/internal/server/seed"
)

func main() {

	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	email := fs.String("email", "", "principal email")
	name := fs.String("name", "", "display name (defaults to the email local part)")
	roleName := fs.String("role", string(models.RoleAdmin), "role: admin, hr or interviewer")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-email", "-name", "-role"}))

	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	if *email == "" {
		v, err := seed.PromptText(reader, "Enter email", os.Stdout)
		if err != nil {
			log.Fatalf("%v", err)
		}
		*email = v
	}

	role, ok := models.ParseRole(*roleName)
	if !ok {
		log.Fatalf("unknown role %q", *roleName)
	}

	password, err := seed.PromptPassword(int(os.Stdin.Fd()), reader, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := sql.Open(repomanager.DriverName, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	user, err := seed.CreatePrincipal(ctx, rm.Users(db), auth.NewHasher(cfg.BcryptCost),
		seed.Principal{Email: *email, UserName: *name, Role: role}, password)
	if err != nil {
		if errors.Is(err, seed.ErrAlreadyExists) {
			fmt.Printf("%s already exists\n", *email)
			return
		}
		log.Fatalf("%v", err)
	}

	fmt.Printf("created %s (id=%d, role=%s)\n", user.Email, user.ID, user.Role)
}

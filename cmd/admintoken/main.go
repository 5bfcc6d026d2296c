package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/kitmoji/api/internal/auth"
	"github.com/kitmoji/api/internal/config"
)

// Mints a bearer token for the admin endpoints. Maintenance scripts
// pass it as "Authorization: Bearer <token>".
func main() {
	name := flag.String("name", "", "Admin name embedded in the token (default: ADMIN_NAME)")
	flag.Parse()

	cfg := config.Load()

	adminName := *name
	if adminName == "" {
		adminName = cfg.AdminName
	}

	token, err := auth.GenerateAdminToken(adminName, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}

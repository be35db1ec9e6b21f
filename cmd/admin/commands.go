package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cookconnect/internal/cache"
	"cookconnect/internal/models"

	"gorm.io/gorm"
)

const usageText = `Usage:
  admin promote <username>   Grant the admin role
  admin demote <username>    Revoke the admin role
  admin ban <username>       Block sign-in
  admin unban <username>     Restore sign-in
  admin list-admins          List all admins
`

var errUsage = errors.New("invalid arguments\n" + usageText)

func run(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list-admins":
		return listAdmins(ctx, db, out)
	case "promote", "demote", "ban", "unban":
		if len(args) < 2 {
			return errUsage
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usageText)
	}

	column, value := "role", any(models.RoleAdmin)
	switch args[0] {
	case "demote":
		value = models.RoleUser
	case "ban":
		column, value = "status", models.StatusBanned
	case "unban":
		column, value = "status", models.StatusActive
	}
	return setField(ctx, db, out, args[1], column, value)
}

func setField(ctx context.Context, db *gorm.DB, out io.Writer, username, column string, value any) error {
	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update(column, value).Error; err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	cache.InvalidateUser(ctx, user.ID)

	_, err := fmt.Fprintf(out, "%s (ID: %d) %s set to %v\n", user.Username, user.ID, column, value)
	return err
}

func listAdmins(ctx context.Context, db *gorm.DB, out io.Writer) error {
	var admins []models.User
	if err := db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		return fmt.Errorf("fetch admins: %w", err)
	}

	if len(admins) == 0 {
		_, err := fmt.Fprintln(out, "No admins found")
		return err
	}
	for _, admin := range admins {
		if _, err := fmt.Fprintf(out, "ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email); err != nil {
			return err
		}
	}
	return nil
}

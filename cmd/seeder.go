package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/backoffice/internal/auth"
	contentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/content"
	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
)

type seedOptions struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
	BCryptCost    int
	// ResetPermissions replaces each group's grants with the defaults
	// instead of only adding missing ones.
	ResetPermissions bool
}

var seedOpts seedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed permissions, groups, the first administrator and taxonomies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log := initLogger(cfg)

		db, sx, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer sx.Close()

		seedOpts.BCryptCost = cfg.Security.BCryptCost
		if err := seedDatabase(cmd.Context(), db, seedOpts, log); err != nil {
			return err
		}
		log.Info("database seeded")
		return nil
	},
}

type permissionSeed struct {
	Key         string
	Module      string
	Category    string
	Description string
}

var permissionSeeds = []permissionSeed{
	{auth.PermUsersManage, "users", "admin", "Create, edit and remove users"},
	{auth.PermPermissionsManage, "users", "admin", "Manage groups and their permissions"},
	{auth.PermPartnersView, "partners", "partners", "Browse partners, review and comment"},
	{auth.PermPartnersManage, "partners", "partners", "Create and edit partners and categories"},
	{auth.PermContentManage, "content", "content", "Manage templates, materials and AI prompts"},
	{auth.PermTicketsManage, "tickets", "support", "Work on tickets from any user"},
	{auth.PermActivityView, "activity", "admin", "Read the activity log"},
	{auth.PermCreditsManage, "credits", "admin", "Adjust user AI credit balances"},
	{auth.PermAIUse, "ai", "content", "Run AI prompts"},
}

type groupSeed struct {
	Name        string
	DisplayName string
	Color       string
	Permissions []string
}

var groupSeeds = []groupSeed{
	{auth.RoleAdmin, "Administradores", "#dc2626", []string{
		auth.PermUsersManage, auth.PermPermissionsManage, auth.PermPartnersView, auth.PermPartnersManage,
		auth.PermContentManage, auth.PermTicketsManage, auth.PermActivityView, auth.PermCreditsManage, auth.PermAIUse,
	}},
	{auth.RoleSupport, "Suporte", "#2563eb", []string{
		auth.PermPartnersView, auth.PermPartnersManage, auth.PermContentManage,
		auth.PermTicketsManage, auth.PermActivityView, auth.PermAIUse,
	}},
	{auth.RoleStudent, "Alunos", "#16a34a", []string{auth.PermPartnersView, auth.PermAIUse}},
}

var (
	partnerCategorySeeds = []string{"Fornecedores", "Plataformas", "Logística", "Marketing", "Serviços"}
	materialTypeSeeds    = []string{"PDF", "Vídeo", "Planilha", "Apresentação"}
	softwareTypeSeeds    = []string{"Canva", "Excel", "Google Sheets", "Notion"}
)

// seedDatabase is idempotent: rows are matched by their unique name or key
// and only created when missing.
func seedDatabase(ctx context.Context, db *gorm.DB, opts seedOptions, log *slog.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		permIDs := make(map[string]int64, len(permissionSeeds))
		for _, p := range permissionSeeds {
			row := userDatamodel.Permission{}
			err := tx.Where(userDatamodel.Permission{Key: p.Key}).
				Attrs(userDatamodel.Permission{Module: p.Module, Category: p.Category, Description: p.Description}).
				FirstOrCreate(&row).Error
			if err != nil {
				return fmt.Errorf("seed permission %s: %w", p.Key, err)
			}
			permIDs[p.Key] = row.ID
		}

		groupIDs := make(map[string]int64, len(groupSeeds))
		for _, g := range groupSeeds {
			row := userDatamodel.UserGroup{}
			err := tx.Where(userDatamodel.UserGroup{Name: g.Name}).
				Attrs(userDatamodel.UserGroup{DisplayName: g.DisplayName, Color: g.Color}).
				FirstOrCreate(&row).Error
			if err != nil {
				return fmt.Errorf("seed group %s: %w", g.Name, err)
			}
			groupIDs[g.Name] = row.ID

			if opts.ResetPermissions {
				if err := tx.Where("group_id = ?", row.ID).Delete(&userDatamodel.GroupPermission{}).Error; err != nil {
					return err
				}
			}
			for _, key := range g.Permissions {
				link := userDatamodel.GroupPermission{GroupID: row.ID, PermissionID: permIDs[key]}
				if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
					return fmt.Errorf("grant %s to %s: %w", key, g.Name, err)
				}
			}
		}

		if opts.AdminEmail != "" {
			if err := seedAdmin(tx, opts, groupIDs[auth.RoleAdmin], log); err != nil {
				return err
			}
		}

		for _, name := range partnerCategorySeeds {
			row := partnerDatamodel.PartnerCategory{}
			if err := tx.Where(partnerDatamodel.PartnerCategory{Name: name}).Attrs(partnerDatamodel.PartnerCategory{IsActive: true}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed partner category %s: %w", name, err)
			}
		}
		for _, name := range materialTypeSeeds {
			row := contentDatamodel.MaterialType{}
			if err := tx.Where(contentDatamodel.MaterialType{Name: name}).Attrs(contentDatamodel.MaterialType{IsActive: true}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed material type %s: %w", name, err)
			}
		}
		for _, name := range softwareTypeSeeds {
			row := contentDatamodel.SoftwareType{}
			if err := tx.Where(contentDatamodel.SoftwareType{Name: name}).Attrs(contentDatamodel.SoftwareType{IsActive: true}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed software type %s: %w", name, err)
			}
		}
		return nil
	})
}

func seedAdmin(tx *gorm.DB, opts seedOptions, groupID int64, log *slog.Logger) error {
	opts.AdminEmail = strings.ToLower(strings.TrimSpace(opts.AdminEmail))

	var existing userDatamodel.User
	err := tx.Where("email = ?", opts.AdminEmail).Limit(1).Find(&existing).Error
	if err != nil {
		return err
	}
	if existing.ID != 0 {
		log.Info("admin user already exists", "email", opts.AdminEmail)
		return tx.Model(&existing).Update("group_id", groupID).Error
	}

	if len(opts.AdminPassword) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(opts.AdminPassword, opts.BCryptCost)
	if err != nil {
		return err
	}

	name := opts.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin := userDatamodel.User{
		Email:        opts.AdminEmail,
		Name:         name,
		PasswordHash: hash,
		GroupID:      &groupID,
		IsActive:     true,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("seeded admin user", "email", opts.AdminEmail)
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", "", "email of the first administrator; skipped when empty")
	seedCmd.Flags().StringVar(&seedOpts.AdminName, "admin-name", "Administrator", "display name of the first administrator")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "password of the first administrator")
	seedCmd.Flags().BoolVar(&seedOpts.ResetPermissions, "reset-permissions", false, "replace group permissions with the defaults")
}

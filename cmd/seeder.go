package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/access-management/internal/auth"
	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the built-in permissions, roles and an admin user",
	Long:  `Provision a fresh database: every built-in permission, the admin/user/moderator roles with their grants, and an active admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		orm, err := initORM(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"permission_logs", "user_roles", "role_permissions", "users", "roles", "permissions"} {
				if err := orm.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		perms := seedPermissions(orm)
		roles := seedRoles(orm, perms)
		seedAdminUser(orm, roles, cfg.Security.BCryptCost)
	},
}

func seedPermissions(orm *gorm.DB) map[string]*rbac.Permission {
	out := make(map[string]*rbac.Permission)
	for _, p := range auth.AllPermissions() {
		var perm rbac.Permission
		err := orm.Where("name = ?", p.Name).First(&perm).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			perm = rbac.Permission{Name: p.Name, Description: p.Description}
			if err := orm.Create(&perm).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", p.Name, err)
			}
			fmt.Println("Seeded permission:", p.Name)
		} else if err != nil {
			log.Fatalf("failed to look up permission %s: %v", p.Name, err)
		}
		out[p.Name] = &perm
	}
	return out
}

// seedRoles provisions the three built-in roles: admin holds everything,
// moderator can read everything and manage users, user can only read users.
func seedRoles(orm *gorm.DB, perms map[string]*rbac.Permission) map[string]*rbac.Role {
	grants := map[string][]string{
		auth.RoleAdmin: allPermissionNames(),
		auth.RoleModerator: {
			auth.PermUserRead, auth.PermUserUpdate,
			auth.PermRoleRead, auth.PermPermissionRead,
		},
		auth.RoleUser: {auth.PermUserRead},
	}
	descriptions := map[string]string{
		auth.RoleAdmin:     "Full administrator",
		auth.RoleModerator: "Can manage users and read access data",
		auth.RoleUser:      "Regular user",
	}

	out := make(map[string]*rbac.Role)
	for name, grantNames := range grants {
		var role rbac.Role
		err := orm.Preload("Permissions").Where("name = ?", name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = rbac.Role{Name: name, Description: descriptions[name]}
			if err := orm.Create(&role).Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", name, err)
			}
			fmt.Println("Seeded role:", name)
		} else if err != nil {
			log.Fatalf("failed to look up role %s: %v", name, err)
		}

		held := make(map[string]bool, len(role.Permissions))
		for _, p := range role.Permissions {
			held[p.Name] = true
		}
		for _, grant := range grantNames {
			if held[grant] {
				continue
			}
			if err := orm.Model(&role).Association("Permissions").Append(perms[grant]); err != nil {
				log.Fatalf("failed to grant %s to role %s: %v", grant, name, err)
			}
		}
		out[name] = &role
	}
	return out
}

func seedAdminUser(orm *gorm.DB, roles map[string]*rbac.Role, bcryptCost int) {
	const adminUsername = "admin"

	var existing rbac.User
	err := orm.Preload("Roles").Where("username = ?", adminUsername).First(&existing).Error
	if err == nil {
		fmt.Println("admin user already exists; will ensure role")
		ensureAdminRole(orm, &existing, roles[auth.RoleAdmin])
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to look up admin user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	email := "admin@example.com"
	admin := rbac.User{
		Username:     adminUsername,
		Email:        &email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := orm.Create(&admin).Error; err != nil {
		log.Fatalf("failed to insert admin user: %v", err)
	}
	ensureAdminRole(orm, &admin, roles[auth.RoleAdmin])
	fmt.Println("Seeded admin user:", adminUsername)
}

func ensureAdminRole(orm *gorm.DB, user *rbac.User, adminRole *rbac.Role) {
	for _, r := range user.Roles {
		if r.ID == adminRole.ID {
			return
		}
	}
	if err := orm.Model(user).Association("Roles").Append(adminRole); err != nil {
		log.Fatalf("failed to assign admin role: %v", err)
	}
}

func allPermissionNames() []string {
	all := auth.AllPermissions()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	return names
}

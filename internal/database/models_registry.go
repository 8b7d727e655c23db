package database

import "socialhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Bookmark{},
		&models.Follow{},
		&models.Notification{},
	}
}

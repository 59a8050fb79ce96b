package database

import (
	convoRepo "github.com/xpanvictor/newscap/internal/repository/conversation"
	operatorRepo "github.com/xpanvictor/newscap/internal/repository/operator"
	"gorm.io/gorm"
)

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&operatorRepo.OperatorEntity{},
		&convoRepo.UserProfileEntity{},
		&convoRepo.ConversationDataEntity{},
		&convoRepo.TranscriptEntryEntity{},
	)
}

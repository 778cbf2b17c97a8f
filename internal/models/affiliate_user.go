package models

// AffiliateUser holds login credentials for an affiliate's leaderboard account.
// Created by an admin; usernames are stored lowercased.
type AffiliateUser struct {
	Base
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(255);not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
}

// File: internal/model/user.go
package model

import "time"

// User 對應 users 資料表；PasswordHash 僅存 bcrypt 雜湊，不輸出到 JSON
type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

package model

import "time"

// InstituteAdmin is an institute staff account.
type InstituteAdmin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CollegeName  string    `json:"college_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// InstituteLoginRequest is the payload for institute staff login.
type InstituteLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// InstituteLoginResponse is returned after a successful institute login.
type InstituteLoginResponse struct {
	Success  bool           `json:"success"`
	Redirect string         `json:"redirect"`
	Token    string         `json:"token"`
	Admin    InstituteAdmin `json:"admin"`
}

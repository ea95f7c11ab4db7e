package user

import "time"

type UpdateDTO struct {
	Name   *string `json:"name"`
	Mail   *string `json:"mail"`
	Avatar *string `json:"avatar"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type profileResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Name          string     `json:"name"`
	Mail          string     `json:"mail"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time"`
	Created       time.Time  `json:"created"`
}

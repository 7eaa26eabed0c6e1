package course

import "time"

type Class struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	GroupName   string    `db:"group_name" json:"group_name"`
	TrainerName string    `db:"trainer_name" json:"trainer_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Instance struct {
	ID              int       `db:"id" json:"id"`
	ClassID         int       `db:"class_id" json:"class_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	MaxParticipants int       `db:"max_participants" json:"max_participants"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type InstanceWithAvailability struct {
	Instance
	ClassName       string `db:"class_name" json:"class_name"`
	GroupName       string `db:"group_name" json:"group_name"`
	RegisteredCount int    `db:"registered_count" json:"registered_count"`
	Available       int    `json:"available"`
	IsFull          bool   `json:"is_full"`
}

type CreateClassRequest struct {
	Name        string `json:"name" binding:"required"`
	GroupName   string `json:"group_name" binding:"required"`
	TrainerName string `json:"trainer_name" binding:"required"`
}

type CreateInstanceRequest struct {
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time" binding:"required"`
	MaxParticipants int    `json:"max_participants" binding:"required,min=1"`
}

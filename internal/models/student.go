package models

import "time"

type Student struct {
	ID        string    `json:"student_id" db:"student_id"`
	Name      string    `json:"name" db:"name"`
	RollNo    string    `json:"roll_no" db:"roll_no"`
	Course    string    `json:"course" db:"course"`
	Semester  string    `json:"semester" db:"semester"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

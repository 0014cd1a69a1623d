// Package models содержит доменные структуры сервиса: пользователя с питомцем
// и дату рождения пользователя.
package models

import "strings"

// DOB представляет дату рождения пользователя и его возраст
type DOB struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

// UserWithPet представляет пользователя вместе с изображением его питомца.
// Значение неизменяемо по договоренности: изображение прикрепляется
// через WithPetImage, которое возвращает копию.
type UserWithPet struct {
	ID       string `json:"id"`
	Gender   string `json:"gender"`
	Country  string `json:"country"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	DOB      DOB    `json:"dob"`
	Phone    string `json:"phone"`
	PetImage string `json:"petImage,omitempty"`
}

// Valid сообщает, пригодна ли запись для выдачи клиенту.
// Запись валидна, если заполнены ID и имя, а email содержит "@".
// Наличие PetImage на валидность не влияет.
func (u UserWithPet) Valid() bool {
	return strings.TrimSpace(u.ID) != "" &&
		strings.TrimSpace(u.Name) != "" &&
		strings.Contains(u.Email, "@")
}

// WithPetImage возвращает копию пользователя с прикрепленным изображением питомца
func (u UserWithPet) WithPetImage(imageURL string) UserWithPet {
	u.PetImage = imageURL
	return u
}

// FullName собирает полное имя из имени и фамилии.
// Если обе части пустые, возвращает пустую строку.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// 演示数据填充脚本
//
// 向空数据库写入一门西班牙语示例课程（含课时与练习），
// 便于本地开发和前端联调。已有课程数据时不做任何操作。
//
// 用法: go run scripts/seed.go

package main

import (
	"log"
	"os"

	"lingo_flow_backend/internal/config"
	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/pkg/database"
	"lingo_flow_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		log.Fatalf("查询课程失败: %v", err)
	}
	if count > 0 {
		log.Printf("已有 %d 门课程，跳过填充", count)
		return
	}

	course := model.Course{
		Language:    "es",
		Title:       "Spanish for Beginners",
		Level:       model.LevelA1,
		Description: "从零开始的西班牙语入门课程",
		Tags:        []string{"beginner", "spanish"},
	}
	course.ID = model.GenerateUUID()

	lesson1 := model.Lesson{
		CourseID:             course.ID,
		Position:             1,
		Title:                "Greetings",
		Objectives:           []string{"学会基本问候语"},
		IntroText:            "Hola 是最常用的问候语。",
		Phrases:              []model.Phrase{{Native: "Hello", Target: "Hola"}, {Native: "Good morning", Target: "Buenos días"}},
		PassThresholdPercent: 70,
		EstDurationMin:       10,
	}
	lesson1.ID = model.GenerateUUID()
	lesson1.Exercises = []model.Exercise{
		{
			LessonID:      lesson1.ID,
			Position:      1,
			Type:          model.ExMultipleChoice,
			Prompt:        "\"Hello\" 的西班牙语是？",
			Options:       []string{"Hola", "Adiós", "Gracias"},
			CorrectAnswer: "Hola",
			Points:        10,
		},
		{
			LessonID:      lesson1.ID,
			Position:      2,
			Type:          model.ExTranslate,
			Prompt:        "翻译：Good morning",
			CorrectAnswer: "Buenos días",
			Points:        10,
		},
	}

	lesson2 := model.Lesson{
		CourseID:             course.ID,
		Position:             2,
		Title:                "Numbers 1-3",
		Objectives:           []string{"掌握数字一到三"},
		PassThresholdPercent: 70,
		EstDurationMin:       10,
	}
	lesson2.ID = model.GenerateUUID()
	lesson2.Exercises = []model.Exercise{
		{LessonID: lesson2.ID, Position: 1, Type: model.ExFillGap, Prompt: "uno, ___, tres", CorrectAnswer: "dos", Points: 10},
		{LessonID: lesson2.ID, Position: 2, Type: model.ExTranslate, Prompt: "翻译：three", CorrectAnswer: "tres", Points: 10},
	}

	course.LessonCount = 2

	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("写入课程失败: %v", err)
	}
	if err := db.Create(&lesson1).Error; err != nil {
		log.Fatalf("写入课时失败: %v", err)
	}
	if err := db.Create(&lesson2).Error; err != nil {
		log.Fatalf("写入课时失败: %v", err)
	}

	log.Println("示例课程填充完成")
}

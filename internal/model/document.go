package model

import (
	"time"
)

// Document 文档实体
// checksum 是原始文件内容的 sha256（十六进制小写），与 user_id 组成唯一键：
// 同一用户重复上传相同内容时直接跳过，不产生第二条记录
type Document struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	FileName   string    `bson:"file_name" json:"file_name"` // 原始文件名，展示用
	FilePath   string    `bson:"file_path" json:"-"`         // 存储层内部路径，不外露
	UploadTime time.Time `bson:"upload_time" json:"upload_time"`
	Size       float64   `bson:"size" json:"size"` // MB
	Checksum   string    `bson:"checksum" json:"checksum"`
}

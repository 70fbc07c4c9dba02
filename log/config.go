package log

import (
	"github.com/kochabx/ecckit/log/writer"
)

// Output 日志输出目标
type Output string

const (
	OutputConsole Output = "console"
	OutputFile    Output = "file"
	OutputMulti   Output = "multi"
)

// Config 日志配置
type Config struct {
	Level       string     `mapstructure:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Output      Output     `mapstructure:"output" json:"output" validate:"omitempty,oneof=console file multi"`
	Caller      bool       `mapstructure:"caller" json:"caller"`
	Desensitize bool       `mapstructure:"desensitize" json:"desensitize"`
	File        FileConfig `mapstructure:"file" json:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Filepath   string            `mapstructure:"filepath" json:"filepath"`
	Filename   string            `mapstructure:"filename" json:"filename"`
	FileExt    string            `mapstructure:"file_ext" json:"file_ext"`
	RotateMode writer.RotateMode `mapstructure:"rotate_mode" json:"rotate_mode" validate:"omitempty,oneof=time size"`
	Rotatelogs RotatelogsConfig  `mapstructure:"rotatelogs" json:"rotatelogs"`
	Lumberjack LumberjackConfig  `mapstructure:"lumberjack" json:"lumberjack"`
}

// RotatelogsConfig 按时间轮转配置
type RotatelogsConfig struct {
	MaxAge       int `mapstructure:"max_age" json:"max_age"`
	RotationTime int `mapstructure:"rotation_time" json:"rotation_time"`
}

// LumberjackConfig 按大小轮转配置
type LumberjackConfig struct {
	MaxSize    int  `mapstructure:"max_size" json:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups"`
	MaxAge     int  `mapstructure:"max_age" json:"max_age"`
	Compress   bool `mapstructure:"compress" json:"compress"`
}

// applyDefaults 为零值字段填充默认值
func (c *FileConfig) applyDefaults() {
	setDefault(&c.Filepath, "log")
	setDefault(&c.Filename, "eccd")
	setDefault(&c.FileExt, "log")
	setDefault(&c.RotateMode, writer.RotateModeSize)
	setDefault(&c.Rotatelogs.MaxAge, 24)
	setDefault(&c.Rotatelogs.RotationTime, 1)
	setDefault(&c.Lumberjack.MaxSize, 100)
	setDefault(&c.Lumberjack.MaxBackups, 5)
	setDefault(&c.Lumberjack.MaxAge, 30)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func (c *FileConfig) toWriterConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:     c.RotateMode,
		Filepath: c.Filepath,
		Filename: c.Filename,
		FileExt:  c.FileExt,
		Time: writer.TimeRotateConfig{
			MaxAge:       c.Rotatelogs.MaxAge,
			RotationTime: c.Rotatelogs.RotationTime,
		},
		Size: writer.SizeRotateConfig{
			MaxSize:    c.Lumberjack.MaxSize,
			MaxBackups: c.Lumberjack.MaxBackups,
			MaxAge:     c.Lumberjack.MaxAge,
			Compress:   c.Lumberjack.Compress,
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/config"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/database"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/jwt"
)

func main() {
	app := &cli.App{
		Name:  "ems-migrate",
		Usage: "数据库迁移与运维工具",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（缺省时仅使用默认值与 EMS_ 环境变量）",
				EnvVars: []string{"EMS_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "执行全部未应用的迁移",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrate) error {
						if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "down",
				Usage: "回滚迁移",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "回滚步数"},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps <= 0 {
						return fmt.Errorf("steps 必须为正数")
					}
					return withMigrator(c, func(m *migrate.Migrate) error {
						if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "version",
				Usage: "查看当前迁移版本",
				Action: func(c *cli.Context) error {
					return withMigrator(c, printVersion)
				},
			},
			{
				Name:      "force",
				Usage:     "强制设置迁移版本（修复 dirty 状态）",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					v, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return fmt.Errorf("无效的版本号: %q", c.Args().First())
					}
					return withMigrator(c, func(m *migrate.Migrate) error {
						if err := m.Force(v); err != nil {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "token",
				Usage: "签发本地调试用 Access Token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "用户 ID"},
					&cli.StringFlag{Name: "role", Value: string(model.UserRoleAdmin), Usage: "admin / organizer / judge / participant"},
				},
				Action: func(c *cli.Context) error {
					role := model.UserRole(c.String("role"))
					if !role.IsValid() {
						return fmt.Errorf("无效的角色: %s", role)
					}
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(c.String("user"), role.String())
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withMigrator 连接数据库并创建迁移实例，执行完毕后释放
func withMigrator(c *cli.Context, fn func(*migrate.Migrate) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m, err := database.NewMigrator(sqlDB)
	if err != nil {
		return err
	}
	return fn(m)
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("尚未执行任何迁移")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("当前版本: %d（dirty=%t）\n", version, dirty)
	return nil
}

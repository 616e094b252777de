package config

import (
	"errors"
	"log"
	"os"
	"sync"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把 init 跟 read 分開
init : 需要設置 viper watch 與 onConfigChange
read : 一般讀取，需要使用讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	InventoryPath string `mapstructure:"INVENTORY_PATH"`
	SalesPath     string `mapstructure:"SALES_PATH"`
	InvoiceDir    string `mapstructure:"INVOICE_DIR"`
	ShopName      string `mapstructure:"SHOP_NAME"`
	ShopAddress   string `mapstructure:"SHOP_ADDRESS"`
	ShopPhone     string `mapstructure:"SHOP_PHONE"`
	ShopEmail     string `mapstructure:"SHOP_EMAIL"`
	Currency      string `mapstructure:"CURRENCY"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
}

// ShopInfo 發票表頭需要的店家資訊
func (c *Config) ShopInfo() model.ShopInfo {
	return model.ShopInfo{
		Name:     c.ShopName,
		Address:  c.ShopAddress,
		Phone:    c.ShopPhone,
		Email:    c.ShopEmail,
		Currency: c.Currency,
	}
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal("error read shoppos config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.mu.Lock()
					configSingleton.Config = cf
					configSingleton.mu.Unlock()
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤，由外部決定要不要 Fatal
.env 不存在時以預設值啟動，環境變數仍可覆寫
*/
func loadConfig() (cf *Config, err error) {
	configSingleton.mu.Lock()
	defer configSingleton.mu.Unlock()

	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("INVENTORY_PATH", "inventory.csv")
	viper.SetDefault("SALES_PATH", "sales.csv")
	viper.SetDefault("INVOICE_DIR", ".")
	viper.SetDefault("SHOP_NAME", "ELECTRO Hub")
	viper.SetDefault("SHOP_ADDRESS", "Arifwala road main bazzar, Qabula")
	viper.SetDefault("SHOP_PHONE", "0300-0000000")
	viper.SetDefault("SHOP_EMAIL", "shop@email.com")
	viper.SetDefault("CURRENCY", "Rs")
	viper.SetDefault("LOG_LEVEL", "info")

	// 檔案存在但讀不動才視為錯誤
	if readErr := viper.ReadInConfig(); readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
		return nil, readErr
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return nil, err
	}
	return cf, nil
}

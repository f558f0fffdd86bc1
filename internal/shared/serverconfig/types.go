package serverconfig

type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	SimServer SimServerConfig `yaml:"simserver" mapstructure:"simserver"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Replay    ReplayConfig    `yaml:"replay" mapstructure:"replay"`
	MongoDB   MongoDBConfig   `yaml:"mongodb" mapstructure:"mongodb"`
	JWTSecret string          `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// SimServerConfig 是 HTTP 与 websocket 共用的监听地址。NeedTicket 为 false 时 join 可以直接指定阵营，便于本地调试。
type SimServerConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`
	Port       int    `yaml:"port" mapstructure:"port"`
	NeedTicket bool   `yaml:"need_ticket" mapstructure:"need_ticket"`
	TicketTTLS int    `yaml:"ticket_ttl_s" mapstructure:"ticket_ttl_s"`
}

type MatchConfig struct {
	MapFile string `yaml:"map_file" mapstructure:"map_file"`
	// Generate 为 true 时忽略 MapFile，用噪声生成地图。
	Generate     bool    `yaml:"generate" mapstructure:"generate"`
	Width        int     `yaml:"width" mapstructure:"width"`
	Height       int     `yaml:"height" mapstructure:"height"`
	Keeps        int     `yaml:"keeps" mapstructure:"keeps"`
	Alliances    int     `yaml:"alliances" mapstructure:"alliances"`
	Seed         int64   `yaml:"seed" mapstructure:"seed"`
	TickRate     int     `yaml:"tick_rate" mapstructure:"tick_rate"`
	NetworkEvery int     `yaml:"network_every" mapstructure:"network_every"`
	Speed        float64 `yaml:"speed" mapstructure:"speed"`
	AccrualMode  string  `yaml:"accrual_mode" mapstructure:"accrual_mode"` // auto/harvest
}

// RulesConfig 覆盖默认数值，零值表示沿用默认。
type RulesConfig struct {
	MaxTroopsPerWave   int     `yaml:"max_troops_per_wave" mapstructure:"max_troops_per_wave"`
	WaveCooldown       float64 `yaml:"wave_cooldown" mapstructure:"wave_cooldown"`
	WaveJitter         float64 `yaml:"wave_jitter" mapstructure:"wave_jitter"`
	InitialGarrison    int     `yaml:"initial_garrison" mapstructure:"initial_garrison"`
	AccrualTime        float64 `yaml:"accrual_time" mapstructure:"accrual_time"`
	ArcherMelee        float64 `yaml:"archer_melee" mapstructure:"archer_melee"`
	ArcherDefense      float64 `yaml:"archer_defense" mapstructure:"archer_defense"`
	WarriorMelee       float64 `yaml:"warrior_melee" mapstructure:"warrior_melee"`
	WarriorDefense     float64 `yaml:"warrior_defense" mapstructure:"warrior_defense"`
	SoldierSpeed       float64 `yaml:"soldier_speed" mapstructure:"soldier_speed"`
	SoldierRadius      float64 `yaml:"soldier_radius" mapstructure:"soldier_radius"`
	TargetCheckTime    float64 `yaml:"target_check_time" mapstructure:"target_check_time"`
	ArcherBaseRange    float64 `yaml:"archer_base_range" mapstructure:"archer_base_range"`
	ArcherFireCooldown float64 `yaml:"archer_fire_cooldown" mapstructure:"archer_fire_cooldown"`
	Gravity            float64 `yaml:"gravity" mapstructure:"gravity"`
	ArrowSpeed         float64 `yaml:"arrow_speed" mapstructure:"arrow_speed"`
	ArrowHitRadius     float64 `yaml:"arrow_hit_radius" mapstructure:"arrow_hit_radius"`
	ResourceGrowTime   float64 `yaml:"resource_grow_time" mapstructure:"resource_grow_time"`
	PartitionSize      float64 `yaml:"partition_size" mapstructure:"partition_size"`
}

type ReplayConfig struct {
	Backend         string `yaml:"backend" mapstructure:"backend"` // memory/sqlite/mongodb
	SQLitePath      string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	FlushIntervalMS int    `yaml:"flush_interval_ms" mapstructure:"flush_interval_ms"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"Strongholds/internal/match/service"
	"Strongholds/internal/shared/logs"
	"Strongholds/internal/shared/serverconfig"
	"Strongholds/modules/kit/logx"

	"go.uber.org/zap"
)

// headless 不开网络，按配置的地图和规则连续跑若干局种子固定的比赛并打印结果。
func main() {
	cfgPath := flag.String("config", "", "配置文件路径，默认向上查找 configs/conf.yml")
	runs := flag.Int("runs", 5, "比赛局数")
	seed := flag.Int64("seed", 1, "第一局的种子，之后每局加一")
	maxTicks := flag.Int("ticks", 30*60*5, "每局最多推进的 tick 数")
	generate := flag.Bool("generate", false, "每局按种子生成地图，忽略 map_file")
	percent := flag.Float64("percent", 0.6, "脚本每次派兵的比例")
	flag.Parse()

	serverconfig.Load(*cfgPath)
	if err := logs.Init("headless", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer func() {
		_ = logs.Sync()
	}()

	matchCfg := serverconfig.Conf.Match
	if *generate {
		matchCfg.Generate = true
	}
	rules, err := service.RulesFromConfig(serverconfig.Conf.Rules, matchCfg.AccrualMode)
	if err != nil {
		logs.Fatal("invalid rules", zap.Error(err))
	}
	l := logx.NewZapLogger(logs.Logger())

	reports := make([]runReport, 0, *runs)
	for i := 0; i < *runs; i++ {
		s := *seed + int64(i)
		text, err := service.MapText(matchCfg, s)
		if err != nil {
			logs.Fatal("load map failed", zap.Int64("seed", s), zap.Error(err))
		}
		rep, err := runMatch(runConfig{
			MapText:      text,
			Rules:        rules,
			Seed:         s,
			TickRate:     matchCfg.TickRate,
			NetworkEvery: matchCfg.NetworkEvery,
			MaxTicks:     *maxTicks,
			DecideEvery:  2,
			Percent:      *percent,
		}, l)
		if err != nil {
			logs.Fatal("run match failed", zap.Int64("seed", s), zap.Error(err))
		}
		logs.Info("match finished",
			zap.Int64("seed", s),
			zap.Uint64("ticks", rep.Ticks),
			zap.Bool("over", rep.Over),
			zap.Int("winner", rep.Winner),
		)
		reports = append(reports, rep)
	}

	printReport(os.Stdout, reports)
}

func printReport(w io.Writer, reports []runReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "seed\tticks\tseconds\twinner\torders\trejected\tcaptures\tshots\tharvests\tkeeps")
	wins := make(map[int]int)
	for _, r := range reports {
		winner := "-"
		if r.Over {
			winner = strconv.Itoa(r.Winner)
			wins[r.Winner]++
		}
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%.1f\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Seed, r.Ticks, r.Seconds, winner, r.Orders, r.Rejected, r.Captures, r.Shots, r.Harvests, ownedString(r.KeepsOwned))
	}
	_ = tw.Flush()

	alliances := make([]int, 0, len(wins))
	for a := range wins {
		alliances = append(alliances, a)
	}
	sort.Ints(alliances)
	parts := make([]string, 0, len(alliances))
	for _, a := range alliances {
		parts = append(parts, fmt.Sprintf("%d:%d", a, wins[a]))
	}
	_, _ = fmt.Fprintf(w, "wins %s (%d runs)\n", strings.Join(parts, " "), len(reports))
}

func ownedString(owned map[int]int) string {
	alliances := make([]int, 0, len(owned))
	for a := range owned {
		alliances = append(alliances, a)
	}
	sort.Ints(alliances)
	parts := make([]string, 0, len(alliances))
	for _, a := range alliances {
		parts = append(parts, fmt.Sprintf("%d=%d", a, owned[a]))
	}
	return strings.Join(parts, ",")
}

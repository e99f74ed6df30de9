package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tasifacuj/mission-control/internal/msp"
)

const (
	outputDescribe = "describe"
	outputJSON     = "json"
	outputYAML     = "yaml"
)

// decodeResult json/yaml 输出结构
type decodeResult struct {
	Message  string                `json:"message"`
	ID       uint16                `json:"id"`
	Firmware string                `json:"firmware"`
	Decoded  bool                  `json:"decoded"`
	Data     msp.Message           `json:"data"`
	Imu      *msp.ImuPhysicalUnits `json:"imu,omitempty"`
}

func newDecodeCommand(firmware *string) *cobra.Command {
	var output string
	var imu bool
	cal := msp.DefaultCalibration()
	cmd := &cobra.Command{
		Use:   "decode <message> <hex>",
		Short: "Decode a hex payload as the given message",
		Example: "  mspctl decode MSP_ATTITUDE 83ff2c010e01\n" +
			"  mspctl decode raw_imu 000200000000000000000000000000000000 --imu -o json",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fw, err := msp.ParseFirmwareVariant(*firmware)
			if err != nil {
				return err
			}
			id, err := msp.ParseID(args[0])
			if err != nil {
				return err
			}
			payload, err := parseHex(args[1])
			if err != nil {
				return err
			}

			msg, decodeErr := msp.DecodePayload(id, fw, payload)
			if msg == nil {
				return decodeErr
			}
			res := decodeResult{
				Message:  id.String(),
				ID:       uint16(id),
				Firmware: fw.String(),
				Decoded:  decodeErr == nil,
				Data:     msg,
			}
			if raw, ok := msg.(*msp.RawImu); ok && imu {
				units := msp.NewImuPhysicalUnits(raw, cal)
				res.Imu = &units
			}
			if err := writeResult(cmd.OutOrStdout(), output, res); err != nil {
				return err
			}
			// 部分解码结果已输出，仍以错误退出
			return decodeErr
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputDescribe, "输出格式：describe|json|yaml")
	cmd.Flags().BoolVar(&imu, "imu", false, "MSP_RAW_IMU 同时输出物理单位")
	cmd.Flags().Float64Var(&cal.AccOneG, "acc-one-g", cal.AccOneG, "1g 对应的加速度计读数")
	cmd.Flags().Float64Var(&cal.GyroUnit, "gyro-unit", cal.GyroUnit, "每个陀螺仪读数对应的 deg/s")
	cmd.Flags().Float64Var(&cal.MagGain, "mag-gain", cal.MagGain, "磁力计读数到 µT 的系数")
	return cmd
}

// parseHex 接受连续十六进制，忽略空白、冒号与 0x 前缀
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return b, nil
}

func writeResult(w io.Writer, format string, res decodeResult) error {
	switch format {
	case outputDescribe:
		fmt.Fprint(w, res.Data.Describe())
		if res.Imu != nil {
			fmt.Fprint(w, res.Imu.Describe())
		}
		return nil
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case outputYAML:
		// Value 只实现了 JSON 编码，先转成通用结构
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

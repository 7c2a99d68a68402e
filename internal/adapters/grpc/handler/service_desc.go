package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// サービス名は dailyreport.v1 パッケージに属します。
const (
	AuthServiceName     = "dailyreport.v1.AuthService"
	EmployeeServiceName = "dailyreport.v1.EmployeeService"
	ReportServiceName   = "dailyreport.v1.ReportService"
)

// FullMethod は gRPC のフルメソッド名を返します。
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// PublicMethods は認証不要のメソッドです。
func PublicMethods() []string {
	return []string{FullMethod(AuthServiceName, "Login")}
}

// AdminMethods は管理者のみが呼び出せるメソッドです。
func AdminMethods() []string {
	return []string{
		FullMethod(EmployeeServiceName, "CreateEmployee"),
		FullMethod(EmployeeServiceName, "UpdateEmployee"),
		FullMethod(EmployeeServiceName, "DeleteEmployee"),
		FullMethod(EmployeeServiceName, "GetEmployee"),
		FullMethod(EmployeeServiceName, "ListEmployees"),
		FullMethod(ReportServiceName, "ListAllReports"),
	}
}

type unaryFunc func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(service, name string, bind func(srv any) unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			call := bind(srv)
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(service, name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(ctx, req.(*structpb.Struct))
			})
		},
	}
}

// AuthServiceServer は AuthService のサーバー実装です。
type AuthServiceServer interface {
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// AuthServiceDesc は AuthService のサービス定義です。
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(AuthServiceName, "Login", func(srv any) unaryFunc { return srv.(AuthServiceServer).Login }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dailyreport/v1/auth.proto",
}

// RegisterAuthServiceServer は AuthService をサーバーへ登録します。
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// EmployeeServiceServer は EmployeeService のサーバー実装です。
type EmployeeServiceServer interface {
	CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// EmployeeServiceDesc は EmployeeService のサービス定義です。
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(EmployeeServiceName, "CreateEmployee", func(srv any) unaryFunc { return srv.(EmployeeServiceServer).CreateEmployee }),
		unaryMethod(EmployeeServiceName, "UpdateEmployee", func(srv any) unaryFunc { return srv.(EmployeeServiceServer).UpdateEmployee }),
		unaryMethod(EmployeeServiceName, "DeleteEmployee", func(srv any) unaryFunc { return srv.(EmployeeServiceServer).DeleteEmployee }),
		unaryMethod(EmployeeServiceName, "GetEmployee", func(srv any) unaryFunc { return srv.(EmployeeServiceServer).GetEmployee }),
		unaryMethod(EmployeeServiceName, "ListEmployees", func(srv any) unaryFunc { return srv.(EmployeeServiceServer).ListEmployees }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dailyreport/v1/employee.proto",
}

// RegisterEmployeeServiceServer は EmployeeService をサーバーへ登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// ReportServiceServer は ReportService のサーバー実装です。
type ReportServiceServer interface {
	CreateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListAllReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ReportServiceDesc は ReportService のサービス定義です。
var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ReportServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(ReportServiceName, "CreateReport", func(srv any) unaryFunc { return srv.(ReportServiceServer).CreateReport }),
		unaryMethod(ReportServiceName, "UpdateReport", func(srv any) unaryFunc { return srv.(ReportServiceServer).UpdateReport }),
		unaryMethod(ReportServiceName, "DeleteReport", func(srv any) unaryFunc { return srv.(ReportServiceServer).DeleteReport }),
		unaryMethod(ReportServiceName, "GetReport", func(srv any) unaryFunc { return srv.(ReportServiceServer).GetReport }),
		unaryMethod(ReportServiceName, "ListReports", func(srv any) unaryFunc { return srv.(ReportServiceServer).ListReports }),
		unaryMethod(ReportServiceName, "ListAllReports", func(srv any) unaryFunc { return srv.(ReportServiceServer).ListAllReports }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dailyreport/v1/report.proto",
}

// RegisterReportServiceServer は ReportService をサーバーへ登録します。
func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}
